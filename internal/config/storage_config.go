package config

type StorageConfig interface {
	GetCredentialStore() string
	GetCredentialPassphrase() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetRedisKey() string
}

const (
	CredentialStoreMemory = "memory"
	CredentialStoreFile   = "file"
	CredentialStoreRedis  = "redis"
)

type Storage struct{}

var _ StorageConfig = Storage{}

func (Storage) GetCredentialStore() string {
	return GetEnv("BLOG_CREDENTIAL_STORE", CredentialStoreFile)
}

// GetCredentialPassphrase seals the file store when non-empty
func (Storage) GetCredentialPassphrase() string {
	return GetEnv("BLOG_CREDENTIAL_PASSPHRASE", "")
}

func (Storage) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "localhost:6379")
}

func (Storage) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}

func (Storage) GetRedisDB() int {
	return GetEnvInt("REDIS_DB", 0)
}

func (Storage) GetRedisKey() string {
	return GetEnv("REDIS_CREDENTIAL_KEY", "blogclient:access_token")
}
