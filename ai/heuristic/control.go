package heuristic

import "stage-battle-server/catalog"

func init() {
	Register(catalog.SkillFateControl, fateControlWeight, fateControlFavourable)
	Register(catalog.SkillHiddenSkill, hiddenWeight, hiddenFavourable)
	Register(catalog.SkillGachaGod, gachaGodWeight, gachaGodFavourable)
}

func fateControlWeight(s *Situation) float64 {
	if changeable(s.Event) && hostileEvent(s.Event, s.Card) {
		return 4
	}
	return 0.5
}

func fateControlFavourable(s *Situation) bool {
	return changeable(s.Event) && hostileEvent(s.Event, s.Card)
}

// Hidden skill pays off with more opponents who might hold skills.
func hiddenWeight(s *Situation) float64 {
	return float64(min(s.Opponents, 4))
}

func hiddenFavourable(s *Situation) bool {
	return s.Opponents >= 2
}

func gachaGodWeight(s *Situation) float64 {
	return float64(max(5-s.HandSize, 0))
}

func gachaGodFavourable(s *Situation) bool {
	return s.HandSize <= 2
}
