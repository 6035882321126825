package strategyconfig

import "time"

// Default returns the built-in strategy
// YAML files are decoded on top of this, so a file only lists what it changes.
func Default() *Config {
	return &Config{
		Meta: Meta{
			StrategyID:  "prebloom_v1",
			Version:     "1.1",
			Description: "Recent mention surge vs. quiet 31-90 day baseline",
		},
		Sources: Sources{
			Subreddits: []string{
				"stocks", "stockmarket", "wallstreetbets", "valueinvesting",
				"pennystocks", "Swingtrading", "stockstobuytoday", "stocksandtrading",
				"wallstreetbetselite", "shortsqueeze", "stockmarketmovers",
				"smallcapstocks", "optionmillionaires",
			},
			DaysBack:             90,
			PostLimitPerSub:      1000,
			ScanComments:         true,
			TopLevelCommentLimit: 75,
			RequestInterval:      100 * time.Millisecond,
			Workers:              1,
		},
		Listings: Listings{
			Primary: ListingSource{
				Name:         "nasdaqlisted",
				URL:          "https://www.nasdaqtrader.com/dynamic/SymDir/nasdaqlisted.txt",
				SymbolColumn: "Symbol",
			},
			Secondary: ListingSource{
				Name:         "otherlisted",
				URL:          "https://www.nasdaqtrader.com/dynamic/SymDir/otherlisted.txt",
				SymbolColumn: "ACT Symbol",
			},
			FooterPrefix: "File Creation Time",
		},
		Extraction: Extraction{
			Stopwords: []string{
				"A", "I", "DD", "CEO", "CFO", "USA", "US", "GDP", "IPO", "AI", "EV",
				"FOMO", "YOLO", "SEC", "FED", "IMO", "TLDR", "EDIT", "WSB", "NYSE",
				"NASDAQ", "THE", "AND", "OR", "FOR", "WITH", "THIS", "THAT",
			},
			ExcludeTickers: []string{
				"AAPL", "MSFT", "AMZN", "GOOG", "GOOGL", "META", "NVDA", "AMD", "TSLA",
				"NFLX", "ORCL", "INTC", "CSCO", "IBM", "ADBE", "CRM", "QCOM", "AVGO",
				"TXN", "SPY", "QQQ", "DIA", "IWM", "VTI", "GME", "AMC", "BB", "NOK",
				"PLTR", "COIN", "MARA", "RIOT",
			},
		},
		Categories: Categories{
			ExcludeETFs:    true,
			ExcludeADRs:    true,
			ExcludeBiotech: true,
			ADRKeywords: []string{
				"AMERICAN DEPOSITARY", "DEPOSITARY SHARES", "DEPOSITARY RECEIPT", "ADR", "ADS",
			},
			BiotechKeywords: []string{
				"BIOTECH", "BIO TECH", "BIOSCIENCE", "BIOSCIENCES", "BIOSCI", "BIOPHARMA",
				"BIO-PHARMA", "PHARMA", "PHARMACEUT", "THERAPEUT", "THERAPEUTICS", "ONCO",
				"ONCOLOGY", "GENOM", "GENE", "IMMUNO", "VACCINE", "CLINICAL", "DRUG", "MEDICINES",
			},
		},
		Aggregation: Aggregation{
			RecentMaxDays:   7,
			MidMaxDays:      30,
			SampleCap:       3,
			SnippetMaxChars: 140,
		},
		Thresholds: Thresholds{
			MinRecentMentions: 3,
			MaxOldMentions:    25,
			MaxTotalMentions:  120,
			MinMomentumRatio:  1.8,
		},
		Output: Output{
			CSVPath:    "prebloom_candidates.csv",
			ConsoleTop: 25,
		},
	}
}
