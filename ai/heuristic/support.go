package heuristic

import "stage-battle-server/catalog"

func init() {
	Register(catalog.SkillSalt, nil, nil)
	Register(catalog.SkillLeekShield, leekShieldWeight, leekShieldFavourable)
	Register(catalog.SkillNeverGiveUp, neverGiveUpWeight, neverGiveUpFavourable)
	Register(catalog.SkillDivineCard, divineWeight, divineFavourable)
}

func leekShieldWeight(s *Situation) float64 {
	if lowHeart(s) {
		return 6
	}
	return 2
}

// A shield is worth it when a loss would hurt or the event is against us.
func leekShieldFavourable(s *Situation) bool {
	return lowHeart(s) || hostileEvent(s.Event, s.Card) || s.Opponents >= 3
}

func neverGiveUpWeight(s *Situation) float64 {
	return float64(s.MaxHeart-s.Heart) * 1.5
}

func neverGiveUpFavourable(s *Situation) bool {
	return s.MaxHeart-s.Heart >= 2
}

func divineWeight(s *Situation) float64 {
	if s.Heart <= 1 {
		return 5
	}
	return 1
}

func divineFavourable(s *Situation) bool {
	return s.Heart <= 1
}
