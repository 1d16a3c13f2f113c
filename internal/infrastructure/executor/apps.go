package executor

type app int

const (
	appTextEditor app = iota
	appCalculator
)

// appCandidates lists argv alternatives per OS, most common first.
func appCandidates(goos string, a app) [][]string {
	switch goos {
	case "windows":
		if a == appCalculator {
			return [][]string{{"calc.exe"}}
		}
		return [][]string{{"notepad.exe"}}
	case "darwin":
		if a == appCalculator {
			return [][]string{{"open", "-a", "Calculator"}}
		}
		return [][]string{{"open", "-a", "TextEdit"}}
	default:
		if a == appCalculator {
			return [][]string{{"gnome-calculator"}, {"kcalc"}, {"galculator"}, {"xcalc"}}
		}
		return [][]string{{"gnome-text-editor"}, {"gedit"}, {"kate"}, {"mousepad"}, {"xed"}}
	}
}

func defaultChromePaths(goos string) []string {
	switch goos {
	case "windows":
		return []string{
			`C:\Program Files\Google\Chrome\Application\chrome.exe`,
			`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
			`${LOCALAPPDATA}\Google\Chrome\Application\chrome.exe`,
		}
	case "darwin":
		return []string{"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome"}
	default:
		return []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser"}
	}
}
