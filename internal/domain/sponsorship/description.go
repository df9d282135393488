package sponsorship

import (
	"fmt"
	"strconv"
	"strings"
)

// familyDutySpecials are duties whose French wording already carries its own
// verb; they are appended untouched after the generic "aide à faire" bucket.
var familyDutySpecials = []string{
	"carries water",
	"animal care",
	"running errands",
	"buying/selling in market",
	"gathers firewood",
	"teaching others",
}

// hobbyVerbs are hobbies whose French wording carries its own verb; anything
// else is prefixed with "jouer".
var hobbyVerbs = []string{
	"art/drawing",
	"bicycling",
	"jump rope",
	"listening to music",
	"musical instrument",
	"reading",
	"running",
	"singing",
	"story telling",
	"swimming",
	"walking",
}

// frenchOrdinals maps US school levels 1..15 to French ordinals.
var frenchOrdinals = []string{
	"première", "deuxième", "troisième", "quatrième", "cinquième",
	"sixième", "septième", "huitième", "neuvième", "dixième", "onzième",
	"douzième", "treizième", "quatorzième", "quinzième",
}

// ComposeFrenchDescription builds the French prose description of a child
// from a case study: four independently optional clauses (church activities,
// family duties, hobbies, schooling) concatenated in fixed order.
func ComposeFrenchDescription(child *Child, cs *CaseStudy) string {
	var b strings.Builder
	b.WriteString(christianActivitiesClauseFR(child, cs))
	b.WriteString(familyDutiesClauseFR(child, cs))
	b.WriteString(hobbiesClauseFR(child, cs))
	b.WriteString(schoolingClauseFR(child, cs))
	return b.String()
}

// joinWithEt joins items with commas and a final "et" before the last one
func joinWithEt(items []string) string {
	if len(items) == 0 {
		return ""
	}
	if len(items) == 1 {
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " et " + items[len(items)-1]
}

// partitionSpecials splits the facts into the closed special list (kept raw)
// and everything else, returning the display strings of each bucket.
func partitionSpecials(values []PropertyValue, specials []string) (plain, special []string) {
	isSpecial := func(en string) bool {
		for _, s := range specials {
			if en == s {
				return true
			}
		}
		return false
	}
	for _, v := range values {
		if isSpecial(v.ValueEN) {
			special = append(special, v.DisplayFR())
		} else {
			plain = append(plain, v.DisplayFR())
		}
	}
	return plain, special
}

func christianActivitiesClauseFR(child *Child, cs *CaseStudy) string {
	values := cs.ValuesFor(CategoryChristianActivities)
	if len(values) == 0 {
		return ""
	}
	items := make([]string, len(values))
	for i, v := range values {
		items[i] = v.DisplayFR()
	}
	return fmt.Sprintf("A l'Église, %s participe %s.", child.Name, joinWithEt(items))
}

func familyDutiesClauseFR(child *Child, cs *CaseStudy) string {
	values := cs.ValuesFor(CategoryFamilyDuties)
	if len(values) == 0 {
		return ""
	}
	plain, special := partitionSpecials(values, familyDutySpecials)
	if len(plain) > 0 {
		plain[0] = "aide à faire " + plain[0]
	}
	items := append(plain, special...)
	return fmt.Sprintf("A la maison, %s %s. ", child.Name, joinWithEt(items))
}

func hobbiesClauseFR(child *Child, cs *CaseStudy) string {
	values := cs.ValuesFor(CategoryHobbies)
	if len(values) == 0 {
		return ""
	}
	plain, special := partitionSpecials(values, hobbyVerbs)
	if len(plain) > 0 {
		plain[0] = "jouer " + plain[0]
	}
	items := append(plain, special...)
	return fmt.Sprintf("%s aime beaucoup %s. ", child.Pronoun(), joinWithEt(items))
}

func schoolingClauseFR(child *Child, cs *CaseStudy) string {
	var b strings.Builder
	b.WriteString(child.Pronoun())
	if !cs.AttendingSchool {
		b.WriteString(" ne va pas à l'école. ")
		return b.String()
	}

	if ordinal, ok := schoolLevelOrdinal(cs.SchoolLevel); ok {
		b.WriteString(" est en " + ordinal + " année")
	} else {
		b.WriteString(" va à l'école")
	}

	if perf := cs.ValuesFor(CategorySchoolPerformance); len(perf) > 0 {
		b.WriteString(fmt.Sprintf(" et %s a des résultats %s. ", child.Name, perf[0].DisplayFR()))
	} else if subject := cs.ValuesFor(CategorySchoolBestSubject); len(subject) > 0 {
		b.WriteString(fmt.Sprintf(" et aime bien %s. ", subject[0].DisplayFR()))
	} else {
		b.WriteString(".")
	}
	return b.String()
}

// schoolLevelOrdinal resolves a numeric US school level 1..15 to its French
// ordinal. Non-numeric or out-of-range levels have no ordinal.
func schoolLevelOrdinal(level string) (string, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(level))
	if err != nil || n < 1 || n >= 16 {
		return "", false
	}
	return frenchOrdinals[n-1], true
}
