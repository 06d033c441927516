package game

import "math"

// Tier is one of the three curriculum difficulty bands. Each maps to a
// class level of the CBSE/NCERT syllabus and a player-level range.
type Tier int

const (
	TierClass8  Tier = 8
	TierClass9  Tier = 9
	TierClass10 Tier = 10
)

// Label returns the human-readable class label, e.g. "Class 8".
func (t Tier) Label() string {
	switch t {
	case TierClass8:
		return "Class 8"
	case TierClass9:
		return "Class 9"
	default:
		return "Class 10"
	}
}

// Curriculum holds the tier thresholds and pacing knobs. Zero value is not
// usable; construct with DefaultCurriculum or from config.
type Curriculum struct {
	Tier1MaxLevel int
	Tier2MaxLevel int

	InitialDurationMinutes    float64
	DurationDecrementPerLevel float64
	MinDurationMinutes        float64
}

// DefaultCurriculum returns the standard pacing.
func DefaultCurriculum() Curriculum {
	return Curriculum{
		Tier1MaxLevel:             10,
		Tier2MaxLevel:             20,
		InitialDurationMinutes:    5.0,
		DurationDecrementPerLevel: 0.25,
		MinDurationMinutes:        1.5,
	}
}

// TierForLevel maps a player level onto a curriculum tier.
func (c Curriculum) TierForLevel(level int) Tier {
	if level <= c.Tier1MaxLevel {
		return TierClass8
	}
	if level <= c.Tier2MaxLevel {
		return TierClass9
	}
	return TierClass10
}

// DurationMinutes computes the case duration for a level: linearly
// decreasing, clamped to the minimum.
func (c Curriculum) DurationMinutes(level int) float64 {
	d := c.InitialDurationMinutes - float64(level-1)*c.DurationDecrementPerLevel
	if d < c.MinDurationMinutes {
		d = c.MinDurationMinutes
	}
	return d
}

// Difficulty maps a player level onto the 1-5 difficulty scale handed to
// the case generator.
func Difficulty(level int) int {
	d := int(math.Ceil(float64(level) / 4.0))
	if d < 1 {
		d = 1
	}
	if d > 5 {
		d = 5
	}
	return d
}

// Topics returns the ordered topic list for a tier.
func Topics(t Tier) []string {
	switch t {
	case TierClass8:
		return class8Topics
	case TierClass9:
		return class9Topics
	default:
		return class10Topics
	}
}

var class8Topics = []string{
	"Rational Numbers",
	"Linear Equations in One Variable",
	"Understanding Quadrilaterals",
	"Data Handling (interpreting bar graphs, pie charts, probability basics)",
	"Squares & Square Roots",
	"Cubes & Cube Roots",
	"Comparing Quantities (percentages, profit/loss, simple/compound interest)",
	"Algebraic Expressions & Identities (multiplication, basic factorization)",
	"Mensuration (area of plane figures, surface area/volume of cube, cuboid, cylinder)",
	"Exponents & Powers",
	"Direct & Inverse Proportions",
	"Factorisation (common factors, regrouping, identities, division)",
	"Introduction to Graphs (bar graphs, pie charts, line graphs, coordinate basics)",
}

var class9Topics = []string{
	"Number Systems (real numbers, irrational numbers, laws of exponents for real numbers)",
	"Polynomials (zeros, remainder theorem, factor theorem, algebraic identities)",
	"Coordinate Geometry (Cartesian plane, plotting points)",
	"Linear Equations in Two Variables (ax+by+c=0, graph of linear equation)",
	"Euclid's Geometry (axioms, postulates, basic theorems)",
	"Lines and Angles (types of angles, parallel lines and transversals, angle sum property of triangles)",
	"Triangles (congruence criteria - SSS, SAS, ASA, RHS, properties of isosceles triangles, inequalities in triangles)",
	"Quadrilaterals (properties of parallelograms, midpoint theorem)",
	"Circles (terms, theorems on equal chords, angle subtended by arc, cyclic quadrilaterals)",
	"Heron's Formula (area of triangle)",
	"Surface Areas & Volumes (cube, cuboid, cylinder, cone, sphere, hemisphere)",
	"Statistics (collection/presentation of data, bar graphs, histograms, frequency polygons, mean, median, mode of ungrouped data)",
}

var class10Topics = []string{
	"Real Numbers (Euclid's division lemma, fundamental theorem of arithmetic, irrational numbers revisited, decimal expansions)",
	"Polynomials (zeros, relationship between zeros and coefficients, division algorithm)",
	"Pair of Linear Equations in Two Variables (graphical solution, algebraic methods - substitution, elimination, cross-multiplication, reducible equations)",
	"Quadratic Equations (standard form, solutions by factorization and quadratic formula, nature of roots)",
	"Arithmetic Progressions (nth term, sum of n terms)",
	"Triangles (similarity criteria - AAA, SSS, SAS, area of similar triangles, Pythagoras theorem and its converse)",
	"Coordinate Geometry (distance formula, section formula, area of triangle)",
	"Introduction to Trigonometry (trigonometric ratios, identities, trigonometric ratios of complementary angles)",
	"Applications of Trigonometry (heights and distances)",
	"Circles (tangents, number of tangents from a point)",
	"Areas Related to Circles (area of sector and segment)",
	"Surface Areas & Volumes (combinations of solids, conversion of solids)",
	"Statistics (mean, median, mode of grouped data, cumulative frequency graphs - ogives)",
	"Probability (classical definition, simple problems)",
}
