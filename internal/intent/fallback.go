package intent

import (
	"regexp"
	"strings"
)

// HelpMessage is returned to the user for commands nothing understood.
const HelpMessage = "I couldn't understand that command. Try something like 'open WhatsApp' or 'search for Android development'"

// DefaultMessage is sent when a messaging command names a recipient but no
// text.
const DefaultMessage = "Hello"

// FallbackApps are the app names the open-app rule recognizes, in match
// order.
var FallbackApps = []string{
	"whatsapp", "youtube", "chrome", "gmail", "maps", "facebook",
	"twitter", "instagram", "settings", "camera", "calculator", "clock", "calendar",
	"photos", "play store", "spotify", "netflix",
}

var (
	phoneInText = regexp.MustCompile(`\b[0-9]{10}\b|\+[0-9]{12,13}\b`)

	// Phrases that separate a recipient from the message after "to".
	transitionWords = []string{" that ", " saying ", ": ", " with ", " message ", " tell ", " the message ", " is "}
	// Phrases that introduce a message placed before "to".
	messageStarts = []string{"send ", "message ", "saying ", "that says ", "text "}
	// Phrases stripped from an extracted message.
	fillerPhrases = []string{"the message is ", "with text ", "saying ", "that says "}
)

// Fallback extracts an Intent with keyword and pattern rules. It is a pure
// function of its input. The first matching category wins: open app,
// website, search, Wi-Fi, Bluetooth, messaging, call. Anything else is
// Unknown.
func Fallback(utterance string) Intent {
	input := strings.ToLower(strings.TrimSpace(utterance))
	rules := []func(string) (Intent, bool){
		openAppRule,
		websiteRule,
		searchRule,
		wifiRule,
		bluetoothRule,
		messageRule,
		callRule,
	}
	for _, rule := range rules {
		if in, ok := rule(input); ok {
			return in
		}
	}
	return New(Unknown, nil)
}

func openAppRule(input string) (Intent, bool) {
	if !strings.Contains(input, "open") {
		return Intent{}, false
	}
	for _, app := range FallbackApps {
		if strings.Contains(input, app) {
			return New(OpenApp, map[string]string{ParamAppName: app}), true
		}
	}
	return Intent{}, false
}

func websiteRule(input string) (Intent, bool) {
	navigate := strings.Contains(input, "go to") || strings.Contains(input, "visit")
	domain := strings.Contains(input, "open") &&
		(strings.Contains(input, ".com") || strings.Contains(input, ".org") || strings.Contains(input, ".net"))
	if !navigate && !domain {
		return Intent{}, false
	}
	for _, word := range strings.Fields(input) {
		word = strings.TrimRight(word, ".,!?")
		if strings.Contains(word, ".") {
			return New(OpenWebsite, map[string]string{ParamURL: word}), true
		}
	}
	return Intent{}, false
}

func searchRule(input string) (Intent, bool) {
	if !strings.Contains(input, "search") {
		return Intent{}, false
	}
	var query string
	if _, after, ok := strings.Cut(input, "search for"); ok {
		query = after
	} else {
		_, query, _ = strings.Cut(input, "search")
	}
	engine := "google"
	if strings.Contains(input, "youtube") {
		engine = "youtube"
	}
	return New(Search, map[string]string{
		ParamQuery:        strings.TrimSpace(query),
		ParamSearchEngine: engine,
	}), true
}

func wifiRule(input string) (Intent, bool) {
	if !strings.Contains(input, "wifi") && !strings.Contains(input, "wi-fi") && !strings.Contains(input, "wi fi") {
		return Intent{}, false
	}
	return New(ToggleWifi, map[string]string{ParamEnable: enableFlag(input)}), true
}

func bluetoothRule(input string) (Intent, bool) {
	if !strings.Contains(input, "bluetooth") {
		return Intent{}, false
	}
	return New(ToggleBluetooth, map[string]string{ParamEnable: enableFlag(input)}), true
}

// enableFlag treats "off" and "disable" as the only negations.
func enableFlag(input string) string {
	if strings.Contains(input, "off") || strings.Contains(input, "disable") {
		return "false"
	}
	return "true"
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func messageRule(input string) (Intent, bool) {
	if !containsAny(input, "send", "message", "text", "tell", "whatsapp", "sms", "telegram") {
		return Intent{}, false
	}

	platform := "whatsapp"
	switch {
	case containsAny(input, "text", "sms"):
		platform = "sms"
	case strings.Contains(input, "telegram"):
		platform = "telegram"
	}

	if phone := phoneInText.FindString(input); phone != "" {
		message := ""
		if idx := strings.Index(input, phone) + len(phone); idx < len(input) {
			message = afterFiller(strings.TrimSpace(input[idx:]))
		}
		if message == "" {
			message = DefaultMessage
		}
		return New(SendMessage, map[string]string{
			ParamPhoneNumber: phone,
			ParamMessage:     message,
			ParamPlatform:    platform,
		}), true
	}

	var contact, message string
	if toIndex := strings.Index(input, "to "); toIndex >= 0 {
		if toIndex > 0 {
			contact, message = splitAroundTo(input, toIndex)
		}
		switch {
		case containsAny(input, " on whatsapp", " via whatsapp"):
			platform = "whatsapp"
		case containsAny(input, " on telegram", " via telegram"):
			platform = "telegram"
		case containsAny(input, " by sms", " via sms", " by text", " via text"):
			platform = "sms"
		}
	}

	if contact == "" || message == "" {
		if c, m, ok := positional(input); ok {
			contact = c
			if m != "" {
				message = m
			}
		}
	}

	if contact != "" && message == "" {
		message = DefaultMessage
	}
	message = stripFiller(message)

	return New(SendMessage, map[string]string{
		ParamContactName: contact,
		ParamMessage:     message,
		ParamPlatform:    platform,
	}), true
}

// splitAroundTo reads "send message to NAME saying TEXT" and
// "send TEXT to NAME" shapes.
func splitAroundTo(input string, toIndex int) (contact, message string) {
	afterTo := strings.TrimSpace(input[toIndex+3:])
	for _, w := range transitionWords {
		if idx := strings.Index(afterTo, w); idx >= 0 {
			return strings.TrimSpace(afterTo[:idx]), strings.TrimSpace(afterTo[idx+len(w):])
		}
	}
	beforeTo := strings.TrimSpace(input[:toIndex])
	for _, start := range messageStarts {
		if idx := strings.Index(beforeTo, start); idx >= 0 {
			return afterTo, strings.TrimSpace(beforeTo[idx+len(start):])
		}
	}
	return afterTo, ""
}

// positional takes the one to three words after "to" or "for" as the
// contact and the remainder as the message.
func positional(input string) (contact, message string, ok bool) {
	words := strings.Split(input, " ")
	if len(words) < 3 {
		return "", "", false
	}
	for i := 0; i < len(words)-2; i++ {
		if words[i] != "to" && words[i] != "for" {
			continue
		}
		end := min(i+4, len(words))
		contact = strings.Join(words[i+1:end], " ")
		if contact == "" {
			continue
		}
		if i+4 < len(words) {
			message = strings.Join(words[i+4:], " ")
		}
		return contact, message, true
	}
	return "", "", false
}

// afterFiller drops everything up to an introducing phrase such as
// "saying", including one at the very start.
func afterFiller(message string) string {
	padded := " " + message
	for _, p := range []string{" the message is ", " with text ", " saying ", " that says "} {
		if idx := strings.Index(padded, p); idx >= 0 {
			padded = " " + padded[idx+len(p):]
		}
	}
	return strings.TrimSpace(padded)
}

func stripFiller(message string) string {
	for _, p := range fillerPhrases {
		message = strings.ReplaceAll(message, p, "")
	}
	return strings.TrimSpace(message)
}

func callRule(input string) (Intent, bool) {
	words := strings.Fields(input)
	at := -1
	for i, w := range words {
		if w == "call" || w == "dial" || w == "phone" {
			at = i
			break
		}
	}
	if at < 0 {
		return Intent{}, false
	}
	if phone := phoneInText.FindString(input); phone != "" {
		return New(MakeCall, map[string]string{ParamPhoneNumber: phone}), true
	}
	return New(MakeCall, map[string]string{ParamContactName: strings.Join(words[at+1:], " ")}), true
}

// commandPatterns mark input that should go to the dispatcher rather than
// the chat model.
var commandPatterns = []string{
	"open", "search", "go to", "send", "call", "find", "show", "turn on", "turn off", "enable", "disable",
	"bluetooth", "wifi", "whatsapp", "youtube", "chrome", "gmail",
}

// IsLikelyCommand reports whether text looks like a device command.
func IsLikelyCommand(text string) bool {
	return containsAny(strings.ToLower(text), commandPatterns...)
}
