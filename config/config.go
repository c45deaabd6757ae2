package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/0xPolygon/cdk-mmr/headermmrsync"
	"github.com/0xPolygon/cdk-mmr/log"
	jRPC "github.com/0xPolygon/cdk-rpc/rpc"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"github.com/urfave/cli/v2"
)

const (
	// FlagCfg is the flag for cfg.
	FlagCfg = "cfg"
	// FlagComponents is the flag for components.
	FlagComponents = "components"
	// FlagCheckpointFile is the flag for the JSON file holding the peaks of the
	// forest preceding the first accumulated block
	FlagCheckpointFile = "checkpoint-file"
	// FlagSaveConfigPath is the flag to save the final configuration file
	FlagSaveConfigPath = "save-config-path"
	// FlagMinConfig prints only the vars without default value
	FlagMinConfig = "min-config"
	// FlagSchema prints the JSON schema of the config
	FlagSchema = "schema"

	EnvVarPrefix       = "CDKMMR"
	ConfigType         = "toml"
	SaveConfigFileName = "cdk_mmr_config.toml"

	DefaultCreationFilePermissions = os.FileMode(0600)
)

/*
Config represents the configuration of the header accumulator node
The file is [TOML format], JSON files are converted to TOML before merging them.

[TOML format]: https://en.wikipedia.org/wiki/TOML
*/
type Config struct {
	// Configure Log level for all the services, allow also to store the logs in a file
	Log log.Config
	// HeaderMMRSync is the configuration of the synchronizer that accumulates the block headers
	HeaderMMRSync headermmrsync.Config
	// RPC is the config for the RPC server
	RPC jRPC.Config
}

// Load loads the configuration from the files passed with --cfg, on top of the defaults
func Load(ctx *cli.Context) (*Config, error) {
	filesData, err := readFiles(ctx.StringSlice(FlagCfg))
	if err != nil {
		return nil, fmt.Errorf("error reading files: %w", err)
	}
	cfg, err := LoadFile(filesData, ctx.String(FlagSaveConfigPath))
	if err != nil {
		return nil, err
	}
	if checkpointFile := ctx.String(FlagCheckpointFile); checkpointFile != "" {
		cfg.HeaderMMRSync.CheckpointFile = checkpointFile
	}
	if err := applyCheckpointFile(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readFiles(files []string) ([]FileData, error) {
	result := make([]FileData, 0, len(files))
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("error reading file content: %s. Err: %w", file, err)
		}
		fileContent := string(content)
		if ext := getFileExtension(file); ext != ConfigType {
			fileContent, err = convertFileToToml(fileContent, ext)
			if err != nil {
				return nil, fmt.Errorf("error converting file: %s from %s to TOML. Err: %w", file, ext, err)
			}
		}
		result = append(result, FileData{Name: file, Content: fileContent})
	}
	return result, nil
}

func getFileExtension(fileName string) string {
	return strings.TrimPrefix(filepath.Ext(fileName), ".")
}

// LoadFile merges the defaults with files, resolves the vars and decodes the result.
// If saveConfigPath is set the rendered TOML is written there
func LoadFile(files []FileData, saveConfigPath string) (*Config, error) {
	fileData := make([]FileData, 0, len(files)+2) //nolint:mnd
	fileData = append(fileData,
		FileData{Name: "default_vars", Content: DefaultVars},
		FileData{Name: "default_values", Content: DefaultValues},
	)
	fileData = append(fileData, files...)

	renderedCfg, err := NewRenderer(fileData, EnvVarPrefix).Render()
	if err != nil {
		return nil, err
	}
	if saveConfigPath != "" {
		fullPath := filepath.Join(saveConfigPath, SaveConfigFileName)
		if err := os.WriteFile(fullPath, []byte(renderedCfg), DefaultCreationFilePermissions); err != nil {
			err = fmt.Errorf("error writing config file: %s. Err: %w", fullPath, err)
			log.Error(err)
			return nil, err
		}
		log.Infof("rendered config written to %s", fullPath)
	}
	return LoadFileFromString(renderedCfg, ConfigType)
}

// LoadFileFromString decodes an already rendered config, env vars prefixed with
// CDKMMR_ override its values (CDKMMR_HEADERMMRSYNC_URLRPC, ...)
func LoadFileFromString(configData string, configType string) (*Config, error) {
	v := viper.New()
	v.SetConfigType(configType)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix(EnvVarPrefix)
	v.AutomaticEnv()
	if err := v.ReadConfig(bytes.NewBufferString(configData)); err != nil {
		return nil, err
	}

	cfg := &Config{}
	// arrays can be set from env vars separated by ",": CDKMMR_LOG_OUTPUTS="stderr,/var/log/mmr.log"
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(), mapstructure.StringToSliceHookFunc(",")))
	if err := v.Unmarshal(cfg, decodeHook); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfigToString returns cfg encoded as JSON
func SaveConfigToString(cfg Config) (string, error) {
	b, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
