package log

// LogEnvironment represents the possible log environments.
type LogEnvironment string

const (
	// EnvironmentProduction production log environment.
	EnvironmentProduction = LogEnvironment("production")
	// EnvironmentDevelopment development log environment.
	EnvironmentDevelopment = LogEnvironment("development")
)

// Config for log
type Config struct {
	// Environment defining the log format ("production" or "development").
	// In development mode enables development mode (which makes DPanicLevel logs panic),
	// uses a console encoder, writes to standard error, and disables sampling.
	// Stacktraces are automatically included on logs of WarnLevel and above.
	// Check [here](https://pkg.go.dev/go.uber.org/zap@v1.24.0#NewDevelopmentConfig)
	Environment LogEnvironment `mapstructure:"Environment" jsonschema:"enum=production,enum=development"`
	// Level of log. As lower value more logs are going to be generated
	Level string `mapstructure:"Level" jsonschema:"enum=debug,enum=info,enum=warn,enum=error,enum=dpanic,enum=panic,enum=fatal"` //nolint:lll
	// Outputs
	Outputs []string `mapstructure:"Outputs"`
	// Rotation applies to the outputs that are files
	Rotation RotationConfig `mapstructure:"Rotation"`
}

// RotationConfig configures the rotation of file outputs. Rotation is off when
// MaxSize is 0.
type RotationConfig struct {
	// MaxSize in megabytes of a file before it gets rotated
	MaxSize int `mapstructure:"MaxSize"`
	// MaxBackups is the number of rotated files kept
	MaxBackups int `mapstructure:"MaxBackups"`
	// MaxAge in days of the rotated files kept
	MaxAge int `mapstructure:"MaxAge"`
	// Compress rotated files with gzip
	Compress bool `mapstructure:"Compress"`
}
