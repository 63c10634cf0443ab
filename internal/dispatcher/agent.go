package dispatcher

import (
	"fmt"

	"github.com/mj1618/devicepilot/internal/intent"
)

var thinking = map[intent.Kind]string{
	intent.OpenApp:         "The user wants me to open an app. This requires accessing the installed applications using the package manager.",
	intent.OpenWebsite:     "The user wants me to open a website. I'll need to create a proper URL and use the browser intent.",
	intent.Search:          "The user wants to search for something. I should detect if they want to use Google or YouTube.",
	intent.SendMessage:     "The user wants to send a message. I need to extract the recipient and message content.",
	intent.MakeCall:        "The user wants to make a phone call. I need to extract the phone number or contact name.",
	intent.ToggleWifi:      "The user wants to control the Wi-Fi. I need to determine if they want to turn it on or off.",
	intent.ToggleBluetooth: "The user wants to control Bluetooth. I need to determine if they want to turn it on or off.",
}

const defaultThinking = "I need to analyze if this is a command I can perform. I'll need to extract the action and relevant parameters."

// AgentReply renders a command result as a chat reply with a thinking
// section and an answer section.
func AgentReply(command string, res Result) string {
	think, ok := thinking[res.Kind]
	if !ok {
		think = defaultThinking
	}

	var answer string
	switch {
	case res.Executed:
		answer = fmt.Sprintf("I've executed your command: %q. %s", command, res.Message)
	case res.Kind == intent.Unknown || res.Kind == "":
		answer = `I couldn't understand your command. Please try commands like "Open WhatsApp" or "Search for Android development on YouTube".`
	default:
		answer = fmt.Sprintf("I understood your command but couldn't execute it: %s. This might require additional permissions or the app might not be installed.", res.Message)
	}
	return "🤔 Thinking:\n" + think + "\n\n✨ Answer:\n" + answer
}
