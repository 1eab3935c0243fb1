// Package content holds the bundled static question banks.
package content

import (
	"fmt"

	"examship-quiz-service/internal/domain"
)

// ChapterSize is the number of questions generated for every bundled chapter.
const ChapterSize = 150

type seed struct {
	text        string
	options     []string
	answer      int
	explanation string
}

type chapterSeed struct {
	name  string
	code  string
	seeds []seed
}

var variantLabels = []string{"Standard", "Advanced", "Conceptual", "Exam PYQ", "Fast Mode", "Challenge", "Logic", "Focus", "High-Res", "Elite"}

var chemistry = []chapterSeed{
	{name: "1. Nature of Matter", code: "N", seeds: []seed{
		{"Which is the fourth state of matter?", []string{"Solid", "Liquid", "Gas", "Plasma"}, 3, "Plasma is an ionised gas found at very high temperatures."},
		{"Sublimation converts a solid directly into a?", []string{"Liquid", "Gas", "Plasma", "Colloid"}, 1, "Camphor and naphthalene sublime straight to vapour."},
	}},
	{name: "2. Atomic Structure", code: "A", seeds: []seed{
		{"Who discovered the proton?", []string{"Thomson", "Goldstein", "Chadwick", "Bohr"}, 1, "Goldstein observed canal rays, later identified as protons."},
		{"The neutron was discovered by?", []string{"Rutherford", "Chadwick", "Dalton", "Millikan"}, 1, "Chadwick discovered the neutron in 1932."},
	}},
	{name: "3. Periodic Classification", code: "P", seeds: []seed{
		{"The modern periodic table is based on?", []string{"Atomic mass", "Atomic number", "Density", "Atomic size"}, 1, "Moseley arranged elements by atomic number."},
		{"Noble gases belong to which group?", []string{"1", "2", "17", "18"}, 3, "Group 18 holds the noble gases."},
	}},
	{name: "4. Chemical Bonding", code: "B", seeds: []seed{
		{"Which bond holds NaCl together?", []string{"Ionic", "Covalent", "Coordinate", "Metallic"}, 0, "Electron transfer from Na to Cl forms an ionic bond."},
		{"How many covalent bonds are in an N2 molecule?", []string{"1", "2", "3", "4"}, 2, "Nitrogen atoms share a triple bond."},
	}},
	{name: "5. Acids, Bases and Salts", code: "AS", seeds: []seed{
		{"What is the pH of pure water?", []string{"6", "7", "8", "9"}, 1, "Pure water is neutral at pH 7."},
		{"Which acid is found in vinegar?", []string{"Citric", "Acetic", "Lactic", "Formic"}, 1, "Vinegar is dilute acetic acid."},
	}},
	{name: "6. Metals and Non-metals", code: "M", seeds: []seed{
		{"Which metal is liquid at room temperature?", []string{"Gold", "Mercury", "Sodium", "Iron"}, 1, "Mercury (Hg) is a liquid metal."},
		{"Which non-metal is a good conductor of electricity?", []string{"Sulphur", "Graphite", "Iodine", "Phosphorus"}, 1, "Graphite has free electrons between its layers."},
	}},
	{name: "7. Organic Chemistry", code: "O", seeds: []seed{
		{"Which gas is known as marsh gas?", []string{"Ethane", "Methane", "Propane", "Butane"}, 1, "Methane (CH4) is called marsh gas."},
		{"The functional group of alcohols is?", []string{"-COOH", "-CHO", "-OH", "-NH2"}, 2, "Alcohols carry a hydroxyl group."},
	}},
	{name: "8. Fuels and Combustion", code: "F", seeds: []seed{
		{"The main component of LPG is?", []string{"Methane", "Ethane", "Butane", "Hydrogen"}, 2, "LPG is mostly butane."},
		{"Which fuel has the highest calorific value?", []string{"Coal", "Petrol", "Hydrogen", "Wood"}, 2, "Hydrogen releases about 150 kJ/g."},
	}},
	{name: "9. Chemistry in Daily Life", code: "D", seeds: []seed{
		{"What is the chemical name of baking soda?", []string{"Sodium carbonate", "Sodium bicarbonate", "Sodium chloride", "Sodium hydroxide"}, 1, "Baking soda is sodium bicarbonate (NaHCO3)."},
		{"Plaster of Paris is a hydrate of?", []string{"Calcium sulphate", "Calcium carbonate", "Calcium oxide", "Calcium chloride"}, 0, "CaSO4 with half a water molecule."},
	}},
	{name: "10. Environmental Chemistry", code: "E", seeds: []seed{
		{"Which gases cause acid rain?", []string{"SO2 and NO2", "CO2 and CO", "CH4 and O3", "N2 and Ar"}, 0, "Oxides of sulphur and nitrogen form acids in rain."},
		{"The ozone layer lies mostly in the?", []string{"Troposphere", "Stratosphere", "Mesosphere", "Thermosphere"}, 1, "Most ozone sits in the stratosphere."},
	}},
}

// Chemistry returns the bundled chemistry chapters, each expanded to ChapterSize questions.
func Chemistry() []domain.Chapter {
	chapters := make([]domain.Chapter, 0, len(chemistry))
	for _, c := range chemistry {
		chapters = append(chapters, domain.Chapter{Name: c.name, Questions: expand(c)})
	}
	return chapters
}

// expand cycles the chapter's seed pool into ChapterSize uniquely identified questions.
func expand(c chapterSeed) []domain.Question {
	pool := c.seeds
	if len(pool) == 0 {
		pool = []seed{{"Standard question", []string{"A", "B", "C", "D"}, 0, "Logic"}}
	}
	out := make([]domain.Question, ChapterSize)
	for i := range out {
		s := pool[i%len(pool)]
		text := fmt.Sprintf("[%s #C%d] %s", variantLabels[i%len(variantLabels)], i+1, s.text)
		if i >= len(pool) {
			text += fmt.Sprintf(" (Set %d)", i/20+1)
		}
		out[i] = domain.Question{
			ID:                 fmt.Sprintf("chm-%s-%d", c.code, i),
			Text:               text,
			Options:            append([]string(nil), s.options...),
			CorrectAnswerIndex: s.answer,
			Explanation:        fmt.Sprintf("%s [ID: CH%d]", s.explanation, i),
		}
	}
	return out
}
