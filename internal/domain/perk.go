package domain

import (
	"fmt"
	"strings"
)

// Perk is a complimentary amenity that can be offered or that a guest used on a past stay.
type Perk string

const (
	PerkSpa          Perk = "spa"
	PerkGym          Perk = "gym"
	PerkKidsClub     Perk = "kids_club"
	PerkBarCredit    Perk = "bar_credit"
	PerkSwimmingPool Perk = "swimming_pool"
	PerkWorkDesk     Perk = "work_desk"
	PerkMeetingRoom  Perk = "meeting_room"
)

// AllPerks is the closed perk vocabulary in canonical order.
var AllPerks = []Perk{
	PerkSpa,
	PerkGym,
	PerkKidsClub,
	PerkBarCredit,
	PerkSwimmingPool,
	PerkWorkDesk,
	PerkMeetingRoom,
}

// facility names as they appear in a guest's history
var perkLabels = map[Perk]string{
	PerkSpa:          "Spa",
	PerkGym:          "Gym",
	PerkKidsClub:     "Kids Club",
	PerkBarCredit:    "Bar",
	PerkSwimmingPool: "Swimming Pool",
	PerkWorkDesk:     "Work Desk",
	PerkMeetingRoom:  "Meeting Room",
}

func ParsePerk(s string) (Perk, error) {
	p := Perk(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := perkLabels[p]; !ok {
		return "", fmt.Errorf("unknown perk %q", s)
	}
	return p, nil
}

// HistoryLabel renders the perk as a facility the guest used before ("Bar").
func (p Perk) HistoryLabel() string {
	if l, ok := perkLabels[p]; ok {
		return l
	}
	return string(p)
}

// AmenityUsage records which amenities a guest used on a stay. Absent keys mean "not used".
type AmenityUsage map[Perk]bool

func (u AmenityUsage) Used(p Perk) bool { return u[p] }

func (u AmenityUsage) Count() int {
	n := 0
	for _, p := range AllPerks {
		if u[p] {
			n++
		}
	}
	return n
}

// UsedPerks returns used amenities in canonical order.
func (u AmenityUsage) UsedPerks() []Perk {
	var out []Perk
	for _, p := range AllPerks {
		if u[p] {
			out = append(out, p)
		}
	}
	return out
}

// PerkCosts maps a perk to its listed cost for one forecast row. Missing perks cost 0.
type PerkCosts map[Perk]float64

func (c PerkCosts) Cost(p Perk) float64 { return c[p] }
