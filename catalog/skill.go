package catalog

import "fmt"

// SkillID identifies one of the closed set of card skills.
type SkillID int

const (
	SkillNone SkillID = iota
	SkillSalt
	SkillLeekShield
	SkillNeverGiveUp
	SkillGoldenMicrophone
	SkillFeetOfFire
	SkillMakeupShopVisit
	SkillMicPowerCut
	SkillFreezeSpell
	SkillBananaSlip
	SkillFateControl
	SkillHiddenSkill
	SkillGachaGod
	SkillDivineCard

	skillCount
)

var skillNames = [...]string{
	SkillNone:             "none",
	SkillSalt:             "salt",
	SkillLeekShield:       "leek_shield",
	SkillNeverGiveUp:      "never_give_up",
	SkillGoldenMicrophone: "golden_microphone",
	SkillFeetOfFire:       "feet_of_fire",
	SkillMakeupShopVisit:  "makeup_shop_visit",
	SkillMicPowerCut:      "mic_power_cut",
	SkillFreezeSpell:      "freeze_spell",
	SkillBananaSlip:       "banana_slip",
	SkillFateControl:      "fate_control",
	SkillHiddenSkill:      "hidden_skill",
	SkillGachaGod:         "gacha_god",
	SkillDivineCard:       "divine_card",
}

// AllSkills returns every real skill (SkillNone excluded) in declaration order.
func AllSkills() []SkillID {
	out := make([]SkillID, 0, int(skillCount)-1)
	for id := SkillSalt; id < skillCount; id++ {
		out = append(out, id)
	}
	return out
}

// String returns the protocol string for a SkillID.
func (s SkillID) String() string {
	if s < 0 || s >= skillCount {
		return "unknown"
	}
	return skillNames[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s SkillID) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. An empty string means no skill.
func (s *SkillID) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*s = SkillNone
		return nil
	}
	for id, name := range skillNames {
		if name == string(b) {
			*s = SkillID(id)
			return nil
		}
	}
	return fmt.Errorf("unknown skill %q", string(b))
}
