// ABOUTME: Agent personality options with their presentation copy
// ABOUTME: A closed set; anything outside it is rejected when parsing form input

package onboarding

// Personality is the tone the agent uses with customers.
type Personality string

const (
	Friendly     Personality = "friendly"
	Professional Personality = "professional"
	Luxury       Personality = "luxury"
)

// PersonalityInfo is the card shown for a personality.
type PersonalityInfo struct {
	Type        Personality
	Icon        string
	Title       string
	Description string
	Example     string
}

var personalities = []PersonalityInfo{
	{
		Type:        Friendly,
		Icon:        "😊",
		Title:       "Friendly",
		Description: "Warm, conversational, and approachable. Uses casual language and emojis.",
		Example:     "Hey there! 👋 I'd love to help you with that!",
	},
	{
		Type:        Professional,
		Icon:        "💼",
		Title:       "Professional",
		Description: "Polished, efficient, and respectful. Maintains professional distance.",
		Example:     "Good day. I would be pleased to assist you with that inquiry.",
	},
	{
		Type:        Luxury,
		Icon:        "✨",
		Title:       "Luxury",
		Description: "Elegant, refined, and exclusive. Emphasizes premium experiences.",
		Example:     "It would be our privilege to craft an exceptional experience for you.",
	},
}

// Personalities returns the cards in display order.
func Personalities() []PersonalityInfo {
	out := make([]PersonalityInfo, len(personalities))
	copy(out, personalities)
	return out
}

// ParsePersonality returns the personality named s.
func ParsePersonality(s string) (Personality, bool) {
	for _, p := range personalities {
		if string(p.Type) == s {
			return p.Type, true
		}
	}
	return "", false
}

// Info returns the card for p, falling back to Friendly.
func (p Personality) Info() PersonalityInfo {
	for _, info := range personalities {
		if info.Type == p {
			return info
		}
	}
	return personalities[0]
}
