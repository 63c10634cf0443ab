package classifier

import "strings"

const promptTemplate = `You are an AI assistant that controls a mobile device. I need you to analyze the following user command and extract structured information so I can execute it correctly.

User command: "{{utterance}}"

Return your response as a valid JSON object with the following properties:
- command_type: One of ["OPEN_APP", "OPEN_WEBSITE", "SEARCH", "SEND_MESSAGE", "MAKE_CALL", "TOGGLE_WIFI", "TOGGLE_BLUETOOTH", "UNKNOWN"]
- parameters: An object containing relevant parameters for the command

For OPEN_APP, include "app_name" in parameters.
For OPEN_WEBSITE, include "url" in parameters.
For SEARCH, include "query" and "search_engine" (google or youtube) in parameters.
For SEND_MESSAGE, include:
  - "contact_name" or "phone_number" (extract exactly as specified)
  - "message" (the text to send)
  - "platform" (detect which platform to use: "whatsapp", "telegram", "sms", etc.)
  If no platform is specified, assume "whatsapp" as default.
For MAKE_CALL, include "contact_name" or "phone_number" in parameters.
For TOGGLE_WIFI and TOGGLE_BLUETOOTH, include "enable" (true/false) in parameters.

Be extremely precise in identifying the user's intent:

1. For messaging commands, look for keywords like:
   - "text", "sms", "message" for SMS
   - "telegram", "tg" for Telegram
   - "whatsapp", "wa" for WhatsApp

2. Pay careful attention to the exact contact name or phone number - extract it exactly as specified. The contact name should include full names (first and last) if provided.

3. The message content should be everything after contact identification phrases like "saying", "that", "with message", etc.

Examples:
- "text John saying I'll be late" → SEND_MESSAGE with platform="sms", contact_name="John", message="I'll be late"
- "message my mom on WhatsApp that dinner is ready" → SEND_MESSAGE with platform="whatsapp", contact_name="my mom", message="dinner is ready"
- "send telegram message to k drama on telegram how are you" → SEND_MESSAGE with platform="telegram", contact_name="k drama", message="how are you"
- "tell Bob I'll call him back" → SEND_MESSAGE with platform="whatsapp", contact_name="Bob", message="I'll call him back"

Return ONLY the JSON without any additional text or explanation.`

// BuildPrompt renders the classification prompt for one utterance.
func BuildPrompt(utterance string) string {
	return strings.Replace(promptTemplate, "{{utterance}}", utterance, 1)
}
