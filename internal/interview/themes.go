// CLAUDE:SUMMARY Fixed theme sequence and the canned opener/transition questions.
package interview

import "fmt"

// Themes is the fixed interview arc, traversed in order.
var Themes = []string{"childhood", "education", "career", "family", "dreams"}

// ThemeIndex returns the position of theme in the arc, or -1.
func ThemeIndex(theme string) int {
	for i, t := range Themes {
		if t == theme {
			return i
		}
	}
	return -1
}

var openers = map[string]string{
	"childhood": "What special memories do you have from your childhood?",
	"education": "What experiences from your school years stand out to you?",
	"career":    "What moments from your working life shaped who you are?",
	"family":    "What stories about your family feel most important to you?",
	"dreams":    "What dreams have guided the choices you've made?",
}

// openerQuestion returns the fixed opening question for a theme.
func openerQuestion(theme string) string {
	if q, ok := openers[theme]; ok {
		return q
	}
	return openers[Themes[0]]
}

// transitionQuestion returns the fixed question used to open a new story
// within the same theme.
func transitionQuestion(theme string) string {
	return fmt.Sprintf("Besides what you've already shared, what other experiences from your %s come to mind?", theme)
}
