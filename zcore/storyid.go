package zcore

// Story identifies known releases that need compatibility workarounds.
type Story int

const (
	Unknown Story = iota
	Zork1
	Zork1G
	Zork2
	Zork3
	MiniZork
	Sampler1
	Sampler2
	Enchanter
	Sorcerer
	Spellbreaker
	Planetfall
	Stationfall
	Ballyhoo
	BorderZone
	AMFV
	HHGG
	LGOP
	Suspect
	Sherlock
	BeyondZork
	ZorkZero
	Shogun
	Arthur
	Journey
	LurkingHorror
)

// Release/serial pairs for story files that are known to be buggy or to rely
// on interpreter quirks. Data collected from http://www.russotto.net/zplet/ivl.html
var storyRecords = []struct {
	id      Story
	release uint16
	serial  string
}{
	{Zork1, 2, "AS000C"},
	{Zork1, 5, ""},
	{Zork1, 15, "UG3AU5"},
	{Zork1, 23, "820428"},
	{Zork1, 25, "820515"},
	{Zork1, 26, "820803"},
	{Zork1, 28, "821013"},
	{Zork1, 30, "830330"},
	{Zork1, 75, "830929"},
	{Zork1, 76, "840509"},
	{Zork1, 88, "840726"},
	{Zork1, 52, "871125"},
	{Zork1G, 3, "880113"},
	{Zork2, 7, "UG3AU5"},
	{Zork2, 15, "820308"},
	{Zork2, 17, "820427"},
	{Zork2, 18, "820512"},
	{Zork2, 18, "820517"},
	{Zork2, 19, "820721"},
	{Zork2, 22, "830331"},
	{Zork2, 23, "830411"},
	{Zork2, 48, "840904"},
	{Zork3, 10, "820818"},
	{Zork3, 12, "821025"},
	{Zork3, 15, "830331"},
	{Zork3, 15, "840518"},
	{Zork3, 16, "830410"},
	{Zork3, 17, "840727"},
	{MiniZork, 34, "871124"},
	{Sampler1, 26, "840731"},
	{Sampler1, 53, "850407"},
	{Sampler1, 55, "850823"},
	{Sampler2, 97, "870601"},
	{Enchanter, 10, "830810"},
	{Enchanter, 15, "831107"},
	{Enchanter, 16, "831118"},
	{Enchanter, 24, "851118"},
	{Enchanter, 29, "860820"},
	{Sorcerer, 4, "840131"},
	{Sorcerer, 6, "840508"},
	{Sorcerer, 13, "851021"},
	{Sorcerer, 15, "851108"},
	{Sorcerer, 18, "860904"},
	{Sorcerer, 67, "0"},
	{Sorcerer, 63, "850916"},
	{Sorcerer, 87, "860904"},
	{Spellbreaker, 63, "850916"},
	{Spellbreaker, 87, "860904"},
	{Planetfall, 20, "830708"},
	{Planetfall, 26, "831014"},
	{Planetfall, 29, "840118"},
	{Planetfall, 37, "851003"},
	{Planetfall, 10, "880531"},
	{Stationfall, 107, "870430"},
	{Ballyhoo, 97, "851218"},
	{BorderZone, 9, "871008"},
	{AMFV, 77, "850814"},
	{AMFV, 79, "851122"},
	{HHGG, 47, "840914"},
	{HHGG, 56, "841221"},
	{HHGG, 58, "851002"},
	{HHGG, 59, "851108"},
	{HHGG, 31, "871119"},
	{LGOP, 0, "BLOWN!"},
	{LGOP, 50, "860711"},
	{LGOP, 59, "860730"},
	{LGOP, 59, "861114"},
	{LGOP, 118, "860325"},
	{LGOP, 4, "880405"},
	{Suspect, 14, "841005"},
	{Sherlock, 21, "871214"},
	{Sherlock, 26, "880127"},
	{BeyondZork, 47, "870915"},
	{BeyondZork, 49, "870917"},
	{BeyondZork, 51, "870923"},
	{BeyondZork, 57, "871221"},
	{ZorkZero, 296, "881019"},
	{ZorkZero, 366, "890323"},
	{ZorkZero, 383, "890602"},
	{ZorkZero, 393, "890714"},
	{Shogun, 292, "890314"},
	{Shogun, 295, "890321"},
	{Shogun, 311, "890510"},
	{Shogun, 322, "890706"},
	{Arthur, 54, "890606"},
	{Arthur, 63, "890622"},
	{Arthur, 74, "890714"},
	{Journey, 26, "890316"},
	{Journey, 30, "890322"},
	{Journey, 77, "890616"},
	{Journey, 83, "890706"},
	{LurkingHorror, 203, "870506"},
	{LurkingHorror, 219, "870912"},
	{LurkingHorror, 221, "870918"},
}

func identifyStory(release uint16, serial [6]uint8) Story {
	for _, record := range storyRecords {
		if record.release != release {
			continue
		}
		matched := true
		for i := 0; i < 6; i++ {
			var c uint8
			if i < len(record.serial) {
				c = record.serial[i]
			}
			if serial[i] != c {
				matched = false
				break
			}
		}
		if matched {
			return record.id
		}
	}
	return Unknown
}
