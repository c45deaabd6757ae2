package log

// Logger methods

// Debug calls log.Debug
func (l *Logger) Debug(args ...interface{}) {
	l.x.Debug(args...)
}

// Debugf calls log.Debugf
func (l *Logger) Debugf(template string, args ...interface{}) {
	l.x.Debugf(template, args...)
}

// Debugw calls log.Debugw
func (l *Logger) Debugw(msg string, kv ...interface{}) {
	l.x.Debugw(msg, kv...)
}

// Info calls log.Info
func (l *Logger) Info(args ...interface{}) {
	l.x.Info(args...)
}

// Infof calls log.Infof
func (l *Logger) Infof(template string, args ...interface{}) {
	l.x.Infof(template, args...)
}

// Infow calls log.Infow
func (l *Logger) Infow(msg string, kv ...interface{}) {
	l.x.Infow(msg, kv...)
}

// Warn calls log.Warn
func (l *Logger) Warn(args ...interface{}) {
	l.x.Warn(args...)
}

// Warnf calls log.Warnf
func (l *Logger) Warnf(template string, args ...interface{}) {
	l.x.Warnf(template, args...)
}

// Warnw calls log.Warnw
func (l *Logger) Warnw(msg string, kv ...interface{}) {
	l.x.Warnw(msg, kv...)
}

// Error calls log.Error
func (l *Logger) Error(args ...interface{}) {
	l.x.Error(args...)
}

// Errorf calls log.Errorf
func (l *Logger) Errorf(template string, args ...interface{}) {
	l.x.Errorf(template, args...)
}

// Errorw calls log.Errorw
func (l *Logger) Errorw(msg string, kv ...interface{}) {
	l.x.Errorw(msg, kv...)
}

// Fatal calls log.Fatal
func (l *Logger) Fatal(args ...interface{}) {
	l.x.Fatal(args...)
}

// Fatalf calls log.Fatalf
func (l *Logger) Fatalf(template string, args ...interface{}) {
	l.x.Fatalf(template, args...)
}

// Fatalw calls log.Fatalw
func (l *Logger) Fatalw(msg string, kv ...interface{}) {
	l.x.Fatalw(msg, kv...)
}

// Package functions, logging through the root logger

// Debug logs a message at level Debug on the root logger
func Debug(args ...interface{}) {
	GetDefaultLogger().Debug(args...)
}

// Debugf logs a formatted message at level Debug on the root logger
func Debugf(template string, args ...interface{}) {
	GetDefaultLogger().Debugf(template, args...)
}

// Debugw logs a message with key/value pairs at level Debug on the root logger
func Debugw(msg string, kv ...interface{}) {
	GetDefaultLogger().Debugw(msg, kv...)
}

// Info logs a message at level Info on the root logger
func Info(args ...interface{}) {
	GetDefaultLogger().Info(args...)
}

// Infof logs a formatted message at level Info on the root logger
func Infof(template string, args ...interface{}) {
	GetDefaultLogger().Infof(template, args...)
}

// Infow logs a message with key/value pairs at level Info on the root logger
func Infow(msg string, kv ...interface{}) {
	GetDefaultLogger().Infow(msg, kv...)
}

// Warn logs a message at level Warn on the root logger
func Warn(args ...interface{}) {
	GetDefaultLogger().Warn(args...)
}

// Warnf logs a formatted message at level Warn on the root logger
func Warnf(template string, args ...interface{}) {
	GetDefaultLogger().Warnf(template, args...)
}

// Warnw logs a message with key/value pairs at level Warn on the root logger
func Warnw(msg string, kv ...interface{}) {
	GetDefaultLogger().Warnw(msg, kv...)
}

// Error logs a message at level Error on the root logger
func Error(args ...interface{}) {
	GetDefaultLogger().Error(args...)
}

// Errorf logs a formatted message at level Error on the root logger
func Errorf(template string, args ...interface{}) {
	GetDefaultLogger().Errorf(template, args...)
}

// Errorw logs a message with key/value pairs at level Error on the root logger
func Errorw(msg string, kv ...interface{}) {
	GetDefaultLogger().Errorw(msg, kv...)
}

// Fatal logs a message at level Fatal on the root logger
func Fatal(args ...interface{}) {
	GetDefaultLogger().Fatal(args...)
}

// Fatalf logs a formatted message at level Fatal on the root logger
func Fatalf(template string, args ...interface{}) {
	GetDefaultLogger().Fatalf(template, args...)
}

// Fatalw logs a message with key/value pairs at level Fatal on the root logger
func Fatalw(msg string, kv ...interface{}) {
	GetDefaultLogger().Fatalw(msg, kv...)
}
