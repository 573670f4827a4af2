// Package decomp implements the decompiler capability on top of the
// engine command protocol.
//
// CmdDecompiler adapts any engine command that prints the standard
// decompilation payload into an sdk.Decompiler. The bundled pdc
// decompiler is one such adapter; scripted plugins declare further
// ones. Collect gathers every decompiler the active plugin set
// provides:
//
//	decs := decomp.Collect(registry, runner, log)
//	if d := decomp.Find(decs, "pdc"); d != nil {
//		d.SubscribeFinished(render)
//		d.DecompileAt(addr)
//	}
package decomp
