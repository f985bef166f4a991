package config

type Config interface {
	EnvConfig
	APIConfig
	StorageConfig
	UploadConfig
}

type EnvConfig interface {
	GetAppName() string
	GetDataFolder() string
	GetEnv() string
	GetLogFormat() string
}

type mainConfig struct {
	EnvVars
	API
	Storage
	Upload
}

func New() Config {
	return mainConfig{}
}
