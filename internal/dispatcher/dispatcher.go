// Package dispatcher resolves a free-text command into an intent and runs
// it. One command runs at a time because every strategy drives the same
// screen.
package dispatcher

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/mj1618/devicepilot/internal/executor"
	"github.com/mj1618/devicepilot/internal/intent"
	"github.com/mj1618/devicepilot/internal/platform"
	"github.com/mj1618/devicepilot/internal/status"
	"github.com/mj1618/devicepilot/internal/strategy"
	"go.uber.org/zap"
)

// Source records which extractor produced the intent.
type Source string

const (
	SourceClassifier Source = "classifier"
	SourceFallback   Source = "fallback"
	SourceDirect     Source = "direct"
)

// Result is the outcome of one command. Message is always set.
type Result struct {
	Executed bool          `yaml:"executed"         json:"executed"`
	Kind     intent.Kind   `yaml:"kind"             json:"kind"`
	Message  string        `yaml:"message"          json:"message"`
	Source   Source        `yaml:"source,omitempty" json:"source,omitempty"`
	Intent   intent.Intent `yaml:"intent"           json:"intent"`
}

// Classifier resolves an utterance remotely. Nil means unavailable.
type Classifier interface {
	Classify(ctx context.Context, utterance string) *intent.Intent
}

// Actions are the package-level device operations.
type Actions interface {
	OpenApp(ctx context.Context, name string) bool
	OpenURL(ctx context.Context, url string) bool
	OpenSearch(ctx context.Context, engine, query string) bool
	DialNumber(ctx context.Context, number string) bool
	ToggleWifi(ctx context.Context, enable bool) executor.RadioOutcome
	ToggleBluetooth(ctx context.Context, enable bool) executor.RadioOutcome
}

// Messengers looks up the messenger for a platform name.
type Messengers interface {
	Get(platform string) (strategy.Messenger, bool)
}

// Options wires a Dispatcher. Classifier, Automation, Status and Log may be
// nil.
type Options struct {
	Classifier Classifier
	Fallback   func(utterance string) intent.Intent
	Actions    Actions
	Messengers Messengers
	Automation platform.AutomationChecker
	Status     status.Reporter
	Log        *zap.Logger
}

// Dispatcher runs commands one at a time.
type Dispatcher struct {
	mu         sync.Mutex
	classifier Classifier
	fallback   func(string) intent.Intent
	actions    Actions
	messengers Messengers
	automation platform.AutomationChecker
	status     status.Reporter
	log        *zap.Logger
}

// New creates a Dispatcher.
func New(opts Options) *Dispatcher {
	d := &Dispatcher{
		classifier: opts.Classifier,
		fallback:   opts.Fallback,
		actions:    opts.Actions,
		messengers: opts.Messengers,
		automation: opts.Automation,
		status:     opts.Status,
		log:        opts.Log,
	}
	if d.fallback == nil {
		d.fallback = intent.Fallback
	}
	if d.status == nil {
		d.status = status.Nop{}
	}
	if d.log == nil {
		d.log = zap.NewNop()
	}
	return d
}

const statusOp = "Command"

// Dispatch classifies utterance, falling back to local extraction when the
// classifier is unavailable or fails, then executes the intent. It never
// panics and always returns a Result.
func (d *Dispatcher) Dispatch(ctx context.Context, utterance string) (res Result) {
	d.mu.Lock()
	defer d.mu.Unlock()
	defer d.recoverPanic(&res)

	d.status.Update(statusOp, "Understanding: "+utterance)
	in, src := d.resolve(ctx, utterance)
	d.log.Info("intent resolved",
		zap.String("source", string(src)),
		zap.String("kind", string(in.Kind)),
		zap.Any("parameters", in.Parameters))

	res = d.execute(ctx, in, src)
	d.status.Update(statusOp, res.Message)
	return res
}

// Execute runs an already resolved intent.
func (d *Dispatcher) Execute(ctx context.Context, in intent.Intent) (res Result) {
	d.mu.Lock()
	defer d.mu.Unlock()
	defer d.recoverPanic(&res)
	res = d.execute(ctx, in, SourceDirect)
	d.status.Update(statusOp, res.Message)
	return res
}

func (d *Dispatcher) resolve(ctx context.Context, utterance string) (intent.Intent, Source) {
	if d.classifier != nil {
		if in := d.classifier.Classify(ctx, utterance); in != nil {
			return *in, SourceClassifier
		}
		d.log.Debug("classifier gave no intent, using fallback")
	}
	return d.fallback(utterance), SourceFallback
}

func (d *Dispatcher) recoverPanic(res *Result) {
	if r := recover(); r != nil {
		d.log.Error("command panicked", zap.Any("panic", r), zap.Stack("stack"))
		*res = Result{Kind: intent.Unknown, Message: MsgInternalError}
	}
}

// User-facing messages.
const (
	MsgInternalError       = "Sorry, something went wrong while running that command."
	MsgCancelled           = "Command cancelled."
	MsgUnknownType         = "Unknown command type."
	MsgAutomationRequired  = "To send messages automatically, please enable the accessibility service in settings. Would you like me to open accessibility settings for you?"
	MsgMissingRecipient    = "I couldn't determine who to send the message to. Please specify a contact name or phone number clearly."
	MsgMissingMessage      = "I couldn't find a message to send. Please specify what message you'd like to send."
	MsgCallStarted         = "Call initiated successfully"
	MsgCallFailed          = "Could not make the call. Please check the phone number or contact name."
	msgRadioFailedTemplate = "Could not control %s. On newer Android versions, you need to use the settings panel."
)

func (d *Dispatcher) execute(ctx context.Context, in intent.Intent, src Source) Result {
	res := Result{Kind: in.Kind, Source: src, Intent: in}
	if err := ctx.Err(); err != nil {
		res.Message = MsgCancelled
		return res
	}

	switch in.Kind {
	case intent.OpenApp:
		app := in.Param(intent.ParamAppName)
		res.Executed = app != "" && d.actions.OpenApp(ctx, app)
		res.Message = pick(res.Executed,
			fmt.Sprintf("Opened %s successfully", app),
			fmt.Sprintf("Could not find or open %s. The app might not be installed.", app))

	case intent.OpenWebsite:
		u := in.Param(intent.ParamURL)
		res.Executed = d.actions.OpenURL(ctx, u)
		res.Message = pick(res.Executed,
			fmt.Sprintf("Opened website %s successfully", u),
			fmt.Sprintf("Could not open website %s.", u))

	case intent.Search:
		query := in.Param(intent.ParamQuery)
		engine := strings.ToLower(in.Param(intent.ParamSearchEngine))
		if engine == "" {
			engine = executor.EngineGoogle
		}
		res.Executed = d.actions.OpenSearch(ctx, engine, query)
		res.Message = pick(res.Executed,
			fmt.Sprintf("Searched for '%s' on %s", query, capitalize(engine)),
			fmt.Sprintf("Could not perform search for '%s'.", query))

	case intent.SendMessage:
		res.Executed, res.Message = d.sendMessage(ctx, in)

	case intent.MakeCall:
		target := in.Param(intent.ParamPhoneNumber)
		if target == "" {
			target = in.Param(intent.ParamContactName)
		}
		res.Executed = target != "" && d.actions.DialNumber(ctx, target)
		res.Message = pick(res.Executed, MsgCallStarted, MsgCallFailed)

	case intent.ToggleWifi:
		enable := in.Enable()
		res.Executed, res.Message = radioResult("Wi-Fi", enable, d.actions.ToggleWifi(ctx, enable))

	case intent.ToggleBluetooth:
		enable := in.Enable()
		res.Executed, res.Message = radioResult("Bluetooth", enable, d.actions.ToggleBluetooth(ctx, enable))

	default:
		res.Kind = intent.Unknown
		res.Message = MsgUnknownType
		if src == SourceFallback {
			res.Message = intent.HelpMessage
		}
	}
	return res
}

// sendMessage applies the guards in order: automation, recipient, message.
// A guard failure never reaches a messenger.
func (d *Dispatcher) sendMessage(ctx context.Context, in intent.Intent) (bool, string) {
	if d.automation == nil || !d.automation.AutomationAvailable(ctx) {
		return false, MsgAutomationRequired
	}
	recipient := in.Recipient()
	if recipient == "" {
		return false, MsgMissingRecipient
	}
	message := in.Param(intent.ParamMessage)
	if message == "" {
		return false, MsgMissingMessage
	}

	platformKey := strategy.NormalizePlatform(in.Param(intent.ParamPlatform))
	var m strategy.Messenger
	if d.messengers != nil {
		m, _ = d.messengers.Get(platformKey)
	}
	if m == nil {
		return false, fmt.Sprintf("Could not send message to %s. Please check that the messaging app is installed and the contact exists.", recipient)
	}

	d.log.Info("sending message", zap.String("platform", m.Name()), zap.String("recipient", recipient))
	if m.Send(ctx, recipient, message) {
		return true, fmt.Sprintf("Message sent successfully to %s via %s", recipient, m.Name())
	}
	return false, sendFailure(platformKey, recipient)
}

func sendFailure(platformKey, recipient string) string {
	switch platformKey {
	case strategy.PlatformWhatsApp:
		return fmt.Sprintf("Could not send WhatsApp message to %s. Please check that WhatsApp is installed and the contact exists in your WhatsApp contacts.", recipient)
	case strategy.PlatformSMS:
		return fmt.Sprintf("Could not send SMS to %s. Please check that the default messaging app is accessible and the contact exists.", recipient)
	case strategy.PlatformTelegram:
		return fmt.Sprintf("Could not send Telegram message to %s. Please verify that Telegram is installed and you have this contact in your Telegram contacts.", recipient)
	default:
		return fmt.Sprintf("Could not send message to %s. Please check that the messaging app is installed and the contact exists.", recipient)
	}
}

// radioResult phrases a toggle outcome. Opening settings counts as executed
// but says plainly that the radio state did not change.
func radioResult(radio string, enable bool, out executor.RadioOutcome) (bool, string) {
	state, verb := "enabled", "on"
	if !enable {
		state, verb = "disabled", "off"
	}
	switch out {
	case executor.RadioToggled:
		return true, fmt.Sprintf("%s %s successfully", radio, state)
	case executor.RadioSettingsOpened:
		return true, fmt.Sprintf("Opened %s settings. This Android version does not let apps switch %s directly, so turn it %s there.", radio, radio, verb)
	default:
		return false, fmt.Sprintf(msgRadioFailedTemplate, radio)
	}
}

func pick(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
