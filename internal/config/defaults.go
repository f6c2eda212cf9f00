package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8090
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "./data/db/uploads.db"
	}
	if cfg.Storage.UploadDir == "" {
		cfg.Storage.UploadDir = "./data/uploads"
	}
	if cfg.Storage.CollectionPath == "" {
		cfg.Storage.CollectionPath = "./data/index/collection.bin"
	}
	if cfg.Storage.CollectionName == "" {
		cfg.Storage.CollectionName = "qa_agent_kb"
	}
	if cfg.Storage.ScriptsDir == "" {
		cfg.Storage.ScriptsDir = "./data/scripts"
	}
	if cfg.Embedding.BaseURL == "" {
		cfg.Embedding.BaseURL = "http://localhost:11434/v1"
	}
	if cfg.Embedding.APIKeyEnv == "" {
		cfg.Embedding.APIKeyEnv = "EMBEDDING_API_KEY"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "all-minilm"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Retrieval.ChunkSize == 0 {
		cfg.Retrieval.ChunkSize = 750
	}
	if cfg.Retrieval.ChunkOverlap == 0 {
		cfg.Retrieval.ChunkOverlap = 100
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 10
	}
	if cfg.Upload.MaxDocuments == 0 {
		cfg.Upload.MaxDocuments = 5
	}
	if cfg.Upload.MaxFileSize == 0 {
		cfg.Upload.MaxFileSize = 10 * 1024 * 1024
	}
	if cfg.Upload.DocumentExtensions == nil {
		cfg.Upload.DocumentExtensions = []string{".md", ".txt", ".pdf", ".json"}
	}
	if cfg.Upload.MarkupExtensions == nil {
		cfg.Upload.MarkupExtensions = []string{".html", ".htm"}
	}
	if cfg.Generation.BaseURL == "" {
		cfg.Generation.BaseURL = "http://localhost:11434/v1"
	}
	if cfg.Generation.APIKeyEnv == "" {
		cfg.Generation.APIKeyEnv = "GENERATION_API_KEY"
	}
	if cfg.Generation.Model == "" {
		cfg.Generation.Model = "llama3.1"
	}
	if cfg.Generation.Temperature == 0 {
		cfg.Generation.Temperature = 0.3
	}
	if cfg.Generation.MaxTokens == 0 {
		cfg.Generation.MaxTokens = 4096
	}
	if cfg.Generation.MaxRetries == 0 {
		cfg.Generation.MaxRetries = 3
	}
}

// AllowedExtensions returns the union of document and markup extensions.
func (c *UploadConfig) AllowedExtensions() []string {
	out := make([]string, 0, len(c.DocumentExtensions)+len(c.MarkupExtensions))
	out = append(out, c.DocumentExtensions...)
	out = append(out, c.MarkupExtensions...)
	return out
}
