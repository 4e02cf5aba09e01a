package logger

import "log/slog"

type Backend string

const (
	BackendStd Backend = "std" // text handler in dev, JSON otherwise
	BackendZap Backend = "zap" // slog-zap bridge
)

type Config struct {
	// Common attributes stamped on every record.
	Service    string
	Version    string
	InstanceID string

	// Output control.
	Level   slog.Level
	Env     Env
	Backend Backend // default: zap for stage/prod, std for dev
	Debug   bool

	// Zap sampling.
	SampleInitial    int
	SampleThereafter int

	// AddSource in dev.
	AddSource bool
}
