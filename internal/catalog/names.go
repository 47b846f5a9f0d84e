package catalog

import "fmt"

// constellation is one entry of the IAU name table.
type constellation struct {
	Latin   string
	Meaning string
}

// constellations lists the 88 IAU constellations in catalog index order.
var constellations = [...]constellation{
	{"Andromeda", "Royal Sea Monster Bait"},
	{"Antlia", "Air Pump"},
	{"Apus", "Bird of Paradise"},
	{"Aquarius", "Water-Bearer"},
	{"Aquila", "Thunderbolt Eagle"},
	{"Ara", "Altar"},
	{"Aries", "Ram"},
	{"Auriga", "Charioteer"},
	{"Boötes", "Herdsman"},
	{"Caelum", "Chisel"},
	{"Camelopardalis", "Giraffe"},
	{"Cancer", "Crab"},
	{"Canes Venatici", "Hunting Dogs"},
	{"Canis Major", "Big Dog"},
	{"Canis Minor", "Small Dog"},
	{"Capricornus", "Sea Goat"},
	{"Carina", "Keel of Argo Navis"},
	{"Cassiopeia", "Vain Queen"},
	{"Centaurus", "Centaur"},
	{"Cepheus", "King"},
	{"Cetus", "Whale"},
	{"Chamaeleon", "Chameleon"},
	{"Circinus", "Compass"},
	{"Columba", "Dove"},
	{"Coma Berenices", "Berenice's Hair"},
	{"Corona Australis", "Southern Crown"},
	{"Corona Borealis", "Northern Crown"},
	{"Corvus", "Raven"},
	{"Crater", "Cup"},
	{"Crux", "Southern Cross"},
	{"Cygnus", "Swan"},
	{"Delphinus", "Dolphin"},
	{"Dorado", "Fish"},
	{"Draco", "Dragon"},
	{"Equuleus", "Little Horse"},
	{"Eridanus", "River"},
	{"Fornax", "Furnace"},
	{"Gemini", "Twins"},
	{"Grus", "Crane"},
	{"Hercules", "Strong Man"},
	{"Horologium", "Pendulum Clock"},
	{"Hydra", "Water Serpent"},
	{"Hydrus", "Watersnake"},
	{"Indus", "Indian"},
	{"Lacerta", "Lizard"},
	{"Leo", "Lion"},
	{"Leo Minor", "Little Lion"},
	{"Lepus", "Hare/Rabbit"},
	{"Libra", "Scales"},
	{"Lupus", "Wolf"},
	{"Lynx", "Lynx"},
	{"Lyra", "Harp"},
	{"Mensa", "Table Mountain"},
	{"Microscopium", "Microscope"},
	{"Monoceros", "Unicorn"},
	{"Musca", "Fly"},
	{"Norma", "Level"},
	{"Octans", "Octant"},
	{"Ophiuchus", "Serpent-Bearer"},
	{"Orion", "Hunter"},
	{"Pavo", "Peacock"},
	{"Pegasus", "Winged horse"},
	{"Perseus", "Greek Hero"},
	{"Phoenix", "Firebird"},
	{"Pictor", "Painter's Easel"},
	{"Pisces", "Fishes"},
	{"Piscis Austrinus", "Southern Fish"},
	{"Puppis", "Stern of Argo Navis"},
	{"Pyxis", "Compass"},
	{"Reticulum", "Reticle"},
	{"Sagitta", "Arrow"},
	{"Sagittarius", "Archer"},
	{"Scorpius", "Scorpion"},
	{"Sculptor", "Sculptor"},
	{"Scutum", "Shield"},
	{"Serpens", "Serpent"},
	{"Sextans", "Sextant"},
	{"Taurus", "Bull"},
	{"Telescopium", "Telescope"},
	{"Triangulum", "Triangle"},
	{"Triangulum Australe", "Southern triangle"},
	{"Tucana", "Toucan"},
	{"Ursa Major", "Big bear"},
	{"Ursa Minor", "Small bear"},
	{"Vela", "Sails of Argo Navis"},
	{"Virgo", "Young Maiden"},
	{"Volans", "Flying Fish"},
	{"Vulpecula", "Little Fox"},
}

// NameCount is the number of entries in the constellation name table.
const NameCount = len(constellations)

// DisplayName returns the table name for a catalog index, such as
// "Orion (Hunter)". Indices outside the table get a generic name.
func DisplayName(index int) string {
	if index < 0 || index >= NameCount {
		return fmt.Sprintf("Pattern %d", index)
	}
	c := constellations[index]
	return fmt.Sprintf("%s (%s)", c.Latin, c.Meaning)
}
