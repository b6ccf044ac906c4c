package heuristic

import (
	"stage-battle-server/catalog"
	"stage-battle-server/scoring"
)

func init() {
	Register(catalog.SkillGoldenMicrophone, boostWeight(scoring.CompetitionVocal), boostFavourable(scoring.CompetitionVocal))
	Register(catalog.SkillFeetOfFire, boostWeight(scoring.CompetitionDance), boostFavourable(scoring.CompetitionDance))
	Register(catalog.SkillMakeupShopVisit, boostWeight(scoring.CompetitionVisual), boostFavourable(scoring.CompetitionVisual))
	Register(catalog.SkillMicPowerCut, debuffWeight(scoring.CompetitionVocal), debuffFavourable(scoring.CompetitionVocal))
	Register(catalog.SkillFreezeSpell, debuffWeight(scoring.CompetitionDance), debuffFavourable(scoring.CompetitionDance))
	Register(catalog.SkillBananaSlip, debuffWeight(scoring.CompetitionVisual), debuffFavourable(scoring.CompetitionVisual))
}

// A boosted primary stat is worth 5 x 2.0 points.
func boostWeight(lens scoring.Competition) WeightFunc {
	return func(s *Situation) float64 {
		if s.Competition == lens {
			return 4
		}
		if lensMatches(lens, s.Competition) {
			return 2
		}
		return 0.5
	}
}

func boostFavourable(lens scoring.Competition) FavourFunc {
	return func(s *Situation) bool {
		return lensMatches(lens, s.Competition)
	}
}

func debuffWeight(lens scoring.Competition) WeightFunc {
	return func(s *Situation) float64 {
		if s.Opponents == 0 {
			return 0
		}
		w := 1.0 + float64(min(s.Opponents, 3))
		if !lensMatches(lens, s.Competition) {
			w /= 2
		}
		return w
	}
}

func debuffFavourable(lens scoring.Competition) FavourFunc {
	return func(s *Situation) bool {
		return s.Opponents > 0 && lensMatches(lens, s.Competition)
	}
}
