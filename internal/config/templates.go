package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Crypto Pulse Configuration

[database]
# SQLite database path. Defaults to <config dir>/data/pulse.db
path = ""

[tracking]
# Cold-start history depth in days
default_window_days = 30
# Chains tracked for on-chain TVL
chains = ["Ethereum", "Solana", "Arbitrum", "Polygon"]
# Exchange candle pairs
exchange_symbols = ["BTC-USDT", "ETH-USDT", "SOL-USDT"]
# EOD forex symbols
forex_symbols = ["DXY.INDX"]

# Tracked assets: display name -> market data provider id
[tracking.assets]
bitcoin = "bitcoin"
ethereum = "ethereum"
solana = "solana"
ripple = "ripple"
pudgy-penguins = "pudgy-penguins"
dogs-2 = "dogs-2"

[news]
# RSS feeds polled every cycle
rss_feeds = [
    "https://www.investing.com/rss/news_301.rss",
    "https://www.investing.com/rss/news_1.rss",
    "https://www.investing.com/rss/news_95.rss",
]
# Keyword searches for general crypto news
general_keywords = ["crypto", "bitcoin", "ethereum", "solana", "ripple", "blockchain"]
# Keyword searches for macro/economic news
economic_keywords = ["inflation", "interest rate", "GDP", "FOMC", "unemployment"]
# Source filter for economic searches
economic_sources = "bloomberg,reuters,the-wall-street-journal,financial-times"
# Results per search
page_size = 20

[ai]
# Any OpenAI-compatible chat endpoint; a local Ollama works via its /v1 path
base_url = "http://localhost:11434/v1"
model = "llama3.2"
# Attempts per article before giving up
max_retries = 3
# Articles annotated per cycle
batch_limit = 5
`

const credentialsTemplate = `# Crypto Pulse Credentials
# WARNING: Keep this file secure! Do not commit to version control.

[newsapi]
api_key = ""

[eodhd]
api_key = ""

[openai]
api_key = ""
`

func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return nil
}

func createTemplateCredentials(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "credentials.toml")
	if err := os.WriteFile(path, []byte(credentialsTemplate), 0600); err != nil {
		return fmt.Errorf("writing credentials template: %w", err)
	}

	return nil
}
