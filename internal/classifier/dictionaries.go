package classifier

import "github.com/AmolDerickSoans/polyfloat-news/internal/models"

// Static lookup tables. Built once at package init and never mutated.

var politicians = []string{
	"joe biden", "biden", "president biden",
	"donald trump", "trump", "president trump",
	"kamala harris", "harris",
	"barack obama", "obama", "president obama",
	"mike pence",
	"ron desantis", "desantis",
	"nikki haley", "haley",
	"tim walz", "walz",
	"j.d. vance", "vance",
	"nancy pelosi", "pelosi",
	"chuck schumer", "schumer",
	"mitch mcconnell", "mcconnell",
	"kevin mccarthy", "mccarthy",
	"hakeem jeffries", "jeffries",
	"elizabeth warren", "warren",
	"bernie sanders", "sanders",
	"aoc", "alexandria ocasio-cortez",
	"ted cruz", "cruz",
	"josh hawley", "hawley",
	"lindsey graham", "graham",
	"mitt romney", "romney",
	"christie noem",
	"greg abbott",
	"gavin newsom",
	"gretchen whitmer",
	"mike pompeo", "pompeo",
	"chris christie",
	"robert kennedy", "rfk",
	"jimmy carter", "carter",
	"bill clinton", "clinton", "hillary clinton",
	"george bush", "bush",
	"dick cheney",
	"vladimir putin", "putin",
	"xi jinping",
	"kim jong un",
	"emanuel macron",
	"olaf scholz",
	"boris johnson",
	"rishisunak",
	"benjamin netanyahu",
	"volodymyr zelenskyy",
	"jair bolsonaro",
	"justin trudeau",
	"jens stoltenberg",
}

var techLeaders = []string{
	"elon musk", "musk",
	"mark zuckerberg", "zuckerberg",
	"sam altman", "altman",
	"satya nadella",
	"sundar pichai",
	"tim cook",
	"jeff bezos", "bezos",
	"andy jassy",
	"jen-hsun huang", "jensen huang",
	"mark benioff",
	"david soloff",
	"sheryl sandberg",
	"bill gates", "gates",
	"steve jobs",
	"steve ballmer",
	"jack dorsey",
	"daniel ek",
	"evan spiegel",
	"patrick collision", "john collision",
	"reed hastings",
	"brian chesky",
	"dara khosrowshahi",
	"doug mcfillon",
	"jamie dimon", "dimon",
	"david solomon",
	"larry fink", "fink",
	"warren buffett", "buffett",
	"charlie munger",
}

var cryptoLeaders = []string{
	"vitalik buterin", "vitalik",
	"cz", "changpeng zhao",
	"sbf", "sam bankman-fried",
	"andrew forrest",
	"dan larimer",
	"charles hoskinson",
	"roger ver",
	"barry silbert",
	"mike novogratz",
	"tyler winklevoss", "cameron winklevoss",
	"brian armstrong",
	"fred ehrsam",
	"hayden adams",
	"stani kulechov",
	"kain warwick",
	"defi",
	"andre cronje",
	"satoshi nakamoto", "satoshi",
	"hal finney",
	"nick szabo",
	"adam back",
	"pieter wuille",
	"gregory maxwell",
	"luke dashjr",
	"gavin andresen",
}

var financeLeaders = []string{
	"jerome powell", "powell",
	"janet yellen", "yellen",
	"christine lagarde",
	"jim bullard",
	"larry summers",
	"gary gensler",
	"michael barr",
	"neel kashkari",
	"mary daly",
	"lael brainard",
	"phil jefferson",
	"john williams",
	"paul krugman",
	"ken french",
	"eugene fama",
	"robert shiller",
	"nouriel roubini",
	"peter schiff",
	"jim grant",
	"stan druckenmiller",
	"ray dalio",
	"bill gross",
	"jeff gundlach",
}

var cryptoTickers = []string{
	"BTC", "ETH", "BNB", "XRP", "ADA", "DOGE", "SOL", "DOT", "MATIC", "SHIB",
	"TRX", "AVAX", "LTC", "LINK", "UNI", "ATOM", "XMR", "ETC", "XLM", "ALGO",
	"VET", "FIL", "NEAR", "AAVE", "APE", "MKR", "COMP", "GRT", "THETA", "SAND",
	"MANA", "AXS", "CRV", "CVX", "GMX", "RUNE", "LDO", "AR", "QNT", "INJ",
	"KAVA", "ROSE", "STX", "ICP", "HBAR", "NEO", "EGLD", "EOS", "BTG", "FTM",
	"CELO", "KCS", "CAKE", "BCH", "BSV", "XEM", "ZEC", "DCR", "DASH", "NEXO",
	"WAVES", "SCRT", "IOST", "RVN", "ONT", "GNO", "LRC", "ZRX", "ENJ", "KSM",
	"MASK", "CELR", "BAKE", "1INCH", "CHR", "BAND", "ANKR", "SKL", "REP", "SNX",
	"YFI", "SRM", "JUP", "ORCA", "RAY", "BONK", "WIF", "PEPE", "FLOKI", "MOG",
	"WEN", "MEME", "COQ",
}

var stockTickers = []string{
	"AAPL", "MSFT", "GOOGL", "GOOG", "AMZN", "NVDA", "META", "TSLA", "BRK.B",
	"JPM", "V", "JNJ", "WMT", "PG", "MA", "UNH", "HD", "BAC", "XOM", "CVX",
	"KO", "PEP", "MRK", "LLY", "ABBV", "PFE", "TMO", "AVGO", "COST", "ORCL",
	"CSCO", "ADBE", "CRM", "NFLX", "INTC", "AMD", "ABT", "QCOM", "ACN", "DHR",
	"LIN", "IBM", "MCD", "NKE", "TXN", "NOW", "UPS", "CAT", "INTU", "BLK",
	"GE", "PLD", "HON", "LMT", "SPGI", "AMGN", "SCHW", "CB", "AXP", "C",
	"GS", "MS", "VRTX", "SYK", "CI", "ISRG", "MDT", "AMT", "REGN", "EL",
	"GILD", "MU", "ADP", "BKNG", "MMC", "PGR", "T", "LHX", "AON", "CME",
	"PANW", "ADI", "APD", "EQIX", "EW", "IDXX", "ICE", "ILMN",
}

var categoryKeywords = map[models.Category][]string{
	models.CategoryPolitics: {
		"election", "vote", "voting", "ballot", "poll", "candidate",
		"congress", "senate", "house", "representative", "senator",
		"president", "governor", "mayor", "legislation", "bill", "law",
		"democrat", "republican", "campaign", "debate", "primary",
		"administration", "policy", "government", "impeachment", "scandal",
		"rally", "convention", "caucus", "referendum", "midterm",
	},
	models.CategoryCrypto: {
		"bitcoin", "ethereum", "crypto", "cryptocurrency", "blockchain",
		"defi", "nft", "web3", "token", "coin", "altcoin", "wallet",
		"exchange", "binance", "coinbase", "kraken", "mining", "hash",
		"fork", "airdrop", "whale", "bull", "bear", "bullish", "bearish",
		"hodl", "gas", "fees", "transaction", "block", "smart contract",
		"dapp", "dao", "stablecoin", "usdt", "usdc", "decentralized",
		"metamask", "ledger", "trezor", "private key", "cold storage",
	},
	models.CategoryEconomics: {
		"inflation", "recession", "gdp", "interest rate", "federal reserve",
		"fed", "economy", "economic", "market", "markets", "stock", "bond",
		"treasury", "yield", "rate hike", "cut", "monetary policy", "fiscal",
		"stimulus", "unemployment", "jobs", "employment", "wages",
		"consumer price index", "cpi", "pce", "growth", "contraction",
		"debt", "deficit", "surplus", "tax", "trade", "exports", "imports",
		"supply chain", "consumer", "spending", "retail", "durable goods",
	},
	models.CategorySports: {
		"nfl", "nba", "mlb", "nhl", "soccer", "football", "basketball",
		"baseball", "hockey", "tennis", "golf", "olympics", "world cup",
		"super bowl", "world series", "playoffs", "championship", "finals",
		"athlete", "player", "team", "coach", "manager", "score", "win",
		"loss", "game", "match", "tournament", "league", "season", "draft",
		"trade", "free agent", "injury", "suspension", "contract",
	},
	models.CategoryOther: {
		"news", "update", "breaking", "report", "article", "story",
		"announced", "released", "launched", "happened", "today",
	},
}

// tickerContextKeywords gate bare (non-$-prefixed) ticker tokens: a bare
// token only counts when the text also contains market context.
var tickerContextKeywords = []string{"stock", "shares", "ticker", "trading", "market"}

// marketPlatforms maps the lowercase trigger to the reported platform name.
var marketPlatforms = []struct {
	trigger string
	name    string
}{
	{"polymarket", "Polymarket"},
	{"kalshi", "Kalshi"},
	{"predictit", "PredictIt"},
	{"manifold", "Manifold"},
}

var stopWords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"the", "and", "for", "are", "but", "not", "you", "all", "can",
		"her", "was", "one", "our", "out", "day", "get", "has", "him",
		"his", "how", "its", "may", "new", "now", "old", "see", "two",
		"way", "who", "boy", "did", "let", "put", "say", "she", "too",
		"use", "dad", "mom", "act", "add", "age", "ago", "air", "art",
		"ask", "bad", "bag", "bed", "big", "box", "bus", "car", "cat",
		"cut", "dog", "eat", "end", "eye", "far", "few", "fly", "fun",
		"gas", "god", "got", "guy", "hot", "ice", "ill", "job", "joy",
		"key", "kid", "law", "lay", "lie", "low", "man", "map", "mix",
		"net", "off", "oil", "own", "pay", "per", "pic", "pig", "pot",
		"red", "run", "sad", "sat", "sea", "set", "sit", "six", "sky",
		"son", "sun", "tax", "tea", "ten", "tie", "top", "toy", "try",
		"van", "war", "win", "yes", "yet", "able", "about", "above",
		"after", "again", "against", "before", "being", "below", "between",
		"both", "came", "come", "could", "does", "done", "down", "during",
		"each", "even", "every", "find", "first", "from", "going", "good",
		"great", "have", "having", "here", "into", "just", "keep", "know",
		"last", "least", "life", "like", "live", "long", "made", "make",
		"many", "might", "more", "most", "much", "must", "name", "need",
		"never", "next", "night", "only", "over", "part", "place", "play",
		"point", "real", "right", "said", "same", "seem", "shall", "should",
		"since", "some", "such", "take", "than", "that", "their", "them",
		"then", "there", "these", "think", "this", "those", "three",
		"through", "time", "told", "under", "until", "very", "want", "well",
		"were", "what", "when", "where", "which", "while", "will", "with",
		"would", "year", "your", "been", "upon", "also",
	} {
		stopWords[w] = struct{}{}
	}
}

// allPeople is the merged roster lookup set.
var allPeople = mergeSets(politicians, techLeaders, cryptoLeaders, financeLeaders)

// allTickers is the merged ticker dictionary (crypto plus equities).
var allTickers = mergeSets(cryptoTickers, stockTickers)

func mergeSets(lists ...[]string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, list := range lists {
		for _, v := range list {
			out[v] = struct{}{}
		}
	}
	return out
}
