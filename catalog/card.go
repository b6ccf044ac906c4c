package catalog

import "fmt"

// Rarity is the card rarity tier.
type Rarity int

const (
	RarityNormal Rarity = iota
	RarityLimited
	RarityFestival
)

// String returns the protocol string for a Rarity.
func (r Rarity) String() string {
	switch r {
	case RarityNormal:
		return "normal"
	case RarityLimited:
		return "limited"
	case RarityFestival:
		return "festival"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r Rarity) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Rarity) UnmarshalText(b []byte) error {
	switch string(b) {
	case "normal":
		*r = RarityNormal
	case "limited":
		*r = RarityLimited
	case "festival":
		*r = RarityFestival
	default:
		return fmt.Errorf("unknown rarity %q", string(b))
	}
	return nil
}

// Stats is the vocal/dance/visual triple a card scores with.
type Stats struct {
	Vocal  int `json:"vocal"`
	Dance  int `json:"dance"`
	Visual int `json:"visual"`
}

// Add returns s+o with every stat floored at 0.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		Vocal:  max(s.Vocal+o.Vocal, 0),
		Dance:  max(s.Dance+o.Dance, 0),
		Visual: max(s.Visual+o.Visual, 0),
	}
}

// IsZero reports whether every stat delta is zero.
func (s Stats) IsZero() bool {
	return s.Vocal == 0 && s.Dance == 0 && s.Visual == 0
}

// Card is an immutable card template. Hands and piles hold copies by value.
type Card struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Vocal     int     `json:"vocal"`
	Dance     int     `json:"dance"`
	Visual    int     `json:"visual"`
	Rarity    Rarity  `json:"rarity"`
	Type      string  `json:"type"`
	Group     string  `json:"group"`
	Character string  `json:"character"`
	Skill     SkillID `json:"skill"`
}

// Stats returns the card's base stats.
func (c Card) Stats() Stats {
	return Stats{Vocal: c.Vocal, Dance: c.Dance, Visual: c.Visual}
}

// HasSkill reports whether the card carries a skill.
func (c Card) HasSkill() bool {
	return c.Skill != SkillNone
}
