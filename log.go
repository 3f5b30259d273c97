package hsmgen

import "go.uber.org/zap"

// nopLogger is used whenever Config.Logger is left nil, so that library
// use (and every test in this module) stays silent by default. Callers
// that want visibility into collection-time decisions (lifecycle triggers
// skipped on a state's own transitions, inherited transitions expanded) set
// Config.Logger to a real *zap.Logger.
func nopLogger() *zap.Logger {
	return zap.NewNop()
}

func loggerOrDefault(l *zap.Logger) *zap.Logger {
	if l == nil {
		return nopLogger()
	}
	return l
}
