package analytics

// topicVocabulary is matched as lower-case substrings, so "pricing" also
// matches "repricing". Order breaks ties between topics found at the same offset.
var topicVocabulary = []string{
	"meeting",
	"project",
	"deadline",
	"budget",
	"pricing",
	"contract",
	"proposal",
	"schedule",
	"delivery",
	"invoice",
	"payment",
	"support",
	"product",
	"demo",
	"feedback",
	"hiring",
	"marketing",
	"sales",
	"launch",
	"renewal",
	"training",
	"integration",
}

var positiveWords = wordSet(
	"good", "great", "excellent", "happy", "thanks", "thank", "appreciate",
	"love", "perfect", "wonderful", "glad", "awesome", "pleased", "helpful",
	"amazing", "fantastic", "excited",
)

var negativeWords = wordSet(
	"bad", "terrible", "awful", "unhappy", "angry", "upset", "problem",
	"issue", "disappointed", "frustrated", "hate", "poor", "wrong",
	"complaint", "worried", "broken", "delay",
)

var formalWords = wordSet(
	"please", "regards", "sincerely", "appreciate", "kindly", "certainly",
	"furthermore", "however", "therefore", "mr", "mrs", "ms", "sir", "madam",
)

var informalWords = wordSet(
	"hey", "yeah", "gonna", "wanna", "cool", "yep", "nope", "kinda",
	"guys", "ok", "okay", "lol", "stuff", "dude",
)

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
