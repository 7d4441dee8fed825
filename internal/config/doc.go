// Package config provides murmur's local configuration.
//
// Configuration lives in a single YAML file inside the data directory
// (see DefaultDataDir):
//
//	<data-dir>/
//	├── config.yaml   # settings
//	├── murmur.log    # structured log
//	└── murmur.db     # saved transcripts
//
// The file holds simple key-value settings:
//
//	provider: ollama
//	host: http://localhost:11434
//	model: granite3-moe
//	history_window: 5
//	history_limit: 10
//	search_endpoint: ""   # empty means DuckDuckGo's HTML page
//	search_results: 5
//	theme: loco
//	persist: true
//
// Values can reference environment variables using $VAR or ${VAR} syntax.
// A .env file in the working directory is loaded before expansion. Only
// the in-memory config is expanded; Save and Set write the references back
// as written, so secrets stay out of the file:
//
//	provider: openai
//	host: ${LLM_HOST}
//	api_key: $OPENAI_API_KEY
//
// Example usage:
//
//	manager := config.NewManager(config.DefaultDataDir())
//	if err := manager.Load(); err != nil {
//		log.Fatal(err)
//	}
//
//	cfg := manager.Get()
//	fmt.Println("model:", cfg.Model)
//
//	// Update a setting
//	manager.Set("model", "llama3.2")
package config
