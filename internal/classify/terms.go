package classify

// Phrase sets, matched case-insensitively against the lower-cased post text
// with word boundaries at both ends (see containsTerm).

var candidateTerms = []string{
	"open to work",
	"seeking opportunities",
	"job seeker",
	"seeking a role",
	"seeking a position",
}

var usTerms = []string{
	"united states", "usa", "u.s.", "u.s.a", "america", "american",
	"remote us", "us remote",
	// states
	"california", "new york", "texas", "florida", "illinois", "pennsylvania",
	"ohio", "georgia", "north carolina", "michigan", "new jersey", "virginia",
	"washington", "arizona", "massachusetts", "tennessee", "indiana",
	"missouri", "maryland", "wisconsin", "minnesota", "colorado", "alabama",
	"south carolina", "louisiana", "kentucky", "oregon", "oklahoma",
	"connecticut", "utah", "iowa", "nevada", "arkansas", "mississippi",
	"kansas", "new mexico", "nebraska", "west virginia", "idaho", "hawaii",
	"new hampshire", "maine", "montana", "rhode island", "delaware",
	"south dakota", "north dakota", "alaska", "vermont", "wyoming",
	"washington dc", ", dc",
	// major cities
	"chicago", "new york city", "nyc", "los angeles", "san francisco",
	"seattle", "boston", "austin", "dallas", "houston", "atlanta", "miami",
	"philadelphia", "phoenix", "denver", "san diego", "san jose", "nashville",
	"portland", "charlotte", "raleigh",
}

var nonUSTerms = []string{
	"india", "hyderabad", "bangalore", "mumbai", "delhi", "chennai",
	"kolkata", "pune", "ahmedabad", "jaipur", "surat", "kanpur", "nagpur",
	"lucknow", "indore", "bhopal",
	"united kingdom", "uk", "london", "manchester", "birmingham",
	"liverpool", "glasgow",
	"canada", "toronto", "montreal", "vancouver", "ottawa", "calgary",
	"edmonton",
	"australia", "sydney", "melbourne", "brisbane", "perth", "adelaide",
	"germany", "berlin", "munich", "hamburg", "frankfurt", "cologne",
	"france", "paris", "lyon", "marseille", "toulouse",
	"spain", "madrid", "barcelona", "valencia", "seville",
	"italy", "rome", "milan", "naples", "turin", "palermo",
	"japan", "tokyo", "osaka", "kyoto", "yokohama", "nagoya",
	"china", "beijing", "shanghai", "guangzhou", "shenzhen",
	"brazil", "sao paulo", "rio de janeiro", "brasilia",
	"mexico city", "guadalajara", "monterrey",
	"singapore", "hong kong", "dubai", "abu dhabi", "doha", "qatar",
	"ireland", "dublin", "cork", "galway",
	"netherlands", "amsterdam", "rotterdam", "the hague",
	"sweden", "stockholm", "gothenburg", "malmo",
	"switzerland", "zurich", "geneva", "bern",
	"poland", "warsaw", "krakow", "lodz",
	"south africa", "johannesburg", "cape town", "durban",
	"new zealand", "auckland", "wellington", "christchurch",
	"argentina", "buenos aires", "cordoba", "rosario",
	"chile", "santiago", "valparaiso", "concepcion",
	"colombia", "bogota", "medellin", "cali",
	"israel", "tel aviv", "jerusalem", "haifa",
	"philippines", "manila", "quezon city", "davao",
	"vietnam", "ho chi minh city", "hanoi", "da nang",
	"thailand", "bangkok", "chiang mai", "phuket",
	"malaysia", "kuala lumpur", "penang", "johor bahru",
	"indonesia", "jakarta", "surabaya", "bandung",
	"pakistan", "karachi", "lahore", "islamabad",
	"bangladesh", "dhaka", "chittagong", "khulna",
	"sri lanka", "colombo", "kandy", "galle",
	"nepal", "kathmandu", "pokhara", "lalitpur",
	"remote global", "worldwide remote", "global remote",
	"international remote",
}

var exclusionTerms = []string{
	"w2 only", "no c2c", "no corp-to-corp", "no 1099", "permanent only",
	"full time only", "no contractors",
}

var contractTerms = []string{
	"contract", "c2c", "corp-to-corp", "corp to corp",
	"corporation to corporation", "contractor", "consulting", "consultant",
	"1099", "independent contractor", "f2f",
}
