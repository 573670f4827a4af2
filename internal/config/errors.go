package config

import "errors"

// ErrBadLogLevel reports a log level logrus does not know.
var ErrBadLogLevel = errors.New("unknown log level")
