package explorer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mj1618/devicepilot/internal/model"
	"github.com/mj1618/devicepilot/internal/platform"
	fd "github.com/mj1618/devicepilot/internal/platform/fakedevice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sleepRecorder struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (r *sleepRecorder) sleep(_ context.Context, d time.Duration) {
	r.mu.Lock()
	r.waits = append(r.waits, d)
	r.mu.Unlock()
}

func newTestExplorer(dev *fd.Device) (*Explorer, *sleepRecorder) {
	rec := &sleepRecorder{}
	return New(dev.Provider(), WithSleep(rec.sleep)), rec
}

func chatScreen() []model.ScreenElement {
	return []model.ScreenElement{
		fd.Group("android.widget.FrameLayout",
			fd.Text("Chats", 40, 100, 300, 80),
			fd.Field("Search...", "Search", 100, 250, 880, 100),
			fd.Group("androidx.recyclerview.widget.RecyclerView",
				fd.Button("Alice Smith", "", 0, 600, 1080, 150),
				fd.Button("Bob", "", 0, 750, 1080, 150),
			),
			fd.Button("", "New chat", 880, 2100, 160, 160),
		),
	}
}

func TestFindByText_CaseInsensitivePreOrder(t *testing.T) {
	e, _ := newTestExplorer(fd.New(chatScreen()...))
	ctx := context.Background()

	el := e.FindByText(ctx, "alice")
	require.NotNil(t, el)
	assert.Equal(t, "Alice Smith", el.Text)

	el = e.FindByText(ctx, "s")
	require.NotNil(t, el)
	assert.Equal(t, "Chats", el.Text, "pre-order returns the first match")

	assert.Nil(t, e.FindByText(ctx, "carol"))
	assert.Nil(t, e.FindByText(ctx, ""))
}

func TestFindByDescription(t *testing.T) {
	e, _ := newTestExplorer(fd.New(chatScreen()...))
	el := e.FindByDescription(context.Background(), "NEW CHAT")
	require.NotNil(t, el)
	assert.True(t, el.Clickable)
	assert.Nil(t, el.Children, "results are detached from the tree")
}

func TestFindAllClickable(t *testing.T) {
	e, _ := newTestExplorer(fd.New(chatScreen()...))
	got := e.FindAllClickable(context.Background())
	var labels []string
	for _, el := range got {
		labels = append(labels, el.Label())
	}
	assert.Equal(t, []string{"Search...", "Alice Smith", "Bob", "New chat"}, labels)
}

func TestFindEditable_PrefersFocused(t *testing.T) {
	first := fd.Field("To", "", 0, 100, 1080, 100)
	focused := fd.Field("Message", "", 0, 2000, 1080, 100)
	focused.Focused = true
	e, _ := newTestExplorer(fd.New(fd.Group("android.widget.LinearLayout", first, focused)))

	el := e.FindEditable(context.Background())
	require.NotNil(t, el)
	assert.Equal(t, "Message", el.Text)
}

func TestFindEditable_FallsBackToFirst(t *testing.T) {
	e, _ := newTestExplorer(fd.New(chatScreen()...))
	el := e.FindEditable(context.Background())
	require.NotNil(t, el)
	assert.Equal(t, "Search...", el.Text)
}

func TestQueries_ReadFreshTreeEachTime(t *testing.T) {
	dev := fd.New(chatScreen()...)
	e, _ := newTestExplorer(dev)
	ctx := context.Background()

	e.FindByText(ctx, "Bob")
	e.FindByText(ctx, "Bob")
	assert.Equal(t, 2, dev.ReadCount())
}

func TestMissingRoot(t *testing.T) {
	dev := fd.New()
	e, _ := newTestExplorer(dev)
	ctx := context.Background()

	assert.Nil(t, e.FindByText(ctx, "anything"))
	assert.Nil(t, e.FindEditable(ctx))
	assert.Empty(t, e.FindAllClickable(ctx))

	dev.Fail = map[string]bool{"read": true}
	assert.Nil(t, e.Read(ctx))
}

func TestNilProvider(t *testing.T) {
	e := New(nil)
	ctx := context.Background()
	assert.Nil(t, e.FindByText(ctx, "x"))
	assert.False(t, e.TapAt(ctx, 1, 1))
	assert.False(t, e.Click(ctx, &model.ScreenElement{}))
}

func TestClick_SettlesAfterAction(t *testing.T) {
	dev := fd.New(chatScreen()...)
	e, rec := newTestExplorer(dev)
	ctx := context.Background()

	el := e.FindByText(ctx, "Bob")
	require.True(t, e.Click(ctx, el))

	actions := dev.EventsOf("action")
	require.Len(t, actions, 1)
	assert.Equal(t, platform.ActionClick, actions[0].Action)
	assert.Equal(t, []time.Duration{DefaultSettle}, rec.waits)
}

func TestClick_Rejected(t *testing.T) {
	dev := fd.New(chatScreen()...)
	dev.Fail = map[string]bool{"action": true}
	e, rec := newTestExplorer(dev)

	assert.False(t, e.Click(context.Background(), &model.ScreenElement{ID: 1}))
	assert.Empty(t, rec.waits, "no settle after a rejected action")
	assert.False(t, e.Click(context.Background(), nil))
}

func TestSetText_FocusThenSet(t *testing.T) {
	dev := fd.New(chatScreen()...)
	e, _ := newTestExplorer(dev)
	ctx := context.Background()

	field := e.FindEditable(ctx)
	require.True(t, e.SetText(ctx, field, "Alice"))

	actions := dev.EventsOf("action")
	require.Len(t, actions, 2)
	assert.Equal(t, platform.ActionFocus, actions[0].Action)
	assert.Equal(t, platform.ActionSetText, actions[1].Action)
	assert.Equal(t, "Alice", actions[1].Text)
}

func TestClearText_Sequence(t *testing.T) {
	dev := fd.New(chatScreen()...)
	e, rec := newTestExplorer(dev)
	ctx := context.Background()

	field := e.FindEditable(ctx)
	require.True(t, e.ClearText(ctx, field))

	actions := dev.EventsOf("action")
	require.Len(t, actions, 3)
	assert.Equal(t, platform.ActionFocus, actions[0].Action)
	assert.Equal(t, platform.ActionLongClick, actions[1].Action)
	assert.Equal(t, platform.ActionSetText, actions[2].Action)
	assert.Equal(t, "", actions[2].Text)
	assert.Len(t, rec.waits, 3)
}

func TestTapAt(t *testing.T) {
	dev := fd.New(chatScreen()...)
	e, rec := newTestExplorer(dev)

	require.True(t, e.TapAt(context.Background(), 960, 2180))
	taps := dev.EventsOf("tap")
	require.Len(t, taps, 1)
	assert.Equal(t, 960, taps[0].X)
	assert.Len(t, rec.waits, 1)

	dev.Fail = map[string]bool{"tap": true}
	assert.False(t, e.TapAt(context.Background(), 1, 1))
}

func TestSearch_RankedFallback(t *testing.T) {
	dev := fd.New(chatScreen()...)
	e, _ := newTestExplorer(dev)
	ctx := context.Background()

	el, name := e.Search(ctx,
		ByDescription("Compose"),
		ClickableIn("bottom-right", BottomRight()),
		ByText("New chat"),
	)
	require.NotNil(t, el)
	assert.Equal(t, "clickable bottom-right", name)
	assert.Equal(t, "New chat", el.Description)
	assert.Equal(t, 1, dev.ReadCount(), "one read per search")

	el, name = e.Search(ctx, ByText("nothing"), ByDescription("nothing"))
	assert.Nil(t, el)
	assert.Empty(t, name)
}

func TestLocators(t *testing.T) {
	s := &Screen{Elements: chatScreen(), Size: model.ScreenSize{Width: 1080, Height: 2400}}
	model.AssignIDs(s.Elements)

	tests := []struct {
		name    string
		locator Locator
		want    string
	}{
		{"exact text", ByExactText("bob"), "Bob"},
		{"exact misses partial", ByExactText("Alice"), ""},
		{"result token", ByResultText("smith"), "Alice Smith"},
		{"short tokens ignored", ClickableWhere("short", MiddleBand(), AnyToken([]string{"al", "bo"}, 2)), ""},
		{"first list row", FirstChildOfClass(model.ListClasses...), "Alice Smith"},
		{"editable top band", EditableIn("top", TopBand(0.2)), "Search..."},
		{"middle band clickable", ClickableIn("middle", MiddleBand()), "Alice Smith"},
		{"middle band with token", ClickableWhere("middle bob", MiddleBand(), AnyToken([]string{"Bob"}, 2)), "Bob"},
		{"top right", ClickableIn("top-right", TopRight(0.15, 0.7)), "Search..."},
		{"bottom band editable", EditableIn("bottom", BottomBand(0.7)), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			el := tt.locator.Find(s)
			if tt.want == "" {
				assert.Nil(t, el)
				return
			}
			require.NotNil(t, el)
			assert.Equal(t, tt.want, el.Label())
		})
	}
}

func TestRegions_UnknownSizeMatchesNothing(t *testing.T) {
	regions := map[string]Region{
		"bottom right": BottomRight(),
		"top band":     TopBand(0.2),
		"top right":    TopRight(0.15, 0.7),
		"bottom band":  BottomBand(0.7),
		"middle band":  MiddleBand(),
	}
	for name, r := range regions {
		for _, size := range []model.ScreenSize{{}, {Width: 1080}, {Height: 2400}} {
			s := &Screen{Elements: chatScreen(), Size: size}
			model.AssignIDs(s.Elements)
			assert.Nil(t, ClickableIn(name, r).Find(s), "%s with size %+v", name, size)
			assert.Nil(t, EditableIn(name, r).Find(s), "%s with size %+v", name, size)
		}
	}
}

func TestRead_ZeroSizeDisablesGeometricFallback(t *testing.T) {
	dev := fd.New(chatScreen()...)
	dev.Size = model.ScreenSize{}
	e, _ := newTestExplorer(dev)

	el, via := e.Search(context.Background(),
		ByDescription("Send"),
		ClickableIn("bottom right", BottomRight()),
	)
	assert.Nil(t, el)
	assert.Empty(t, via)
}

func TestScreen_ContainsText(t *testing.T) {
	s := &Screen{Elements: chatScreen()}
	assert.True(t, s.ContainsText("new chat"))
	assert.False(t, s.ContainsText("dinner"))
}

func TestWait_UsesSleep(t *testing.T) {
	e, rec := newTestExplorer(fd.New())
	e.Wait(context.Background(), 2*time.Second)
	assert.Equal(t, []time.Duration{2 * time.Second}, rec.waits)
}

func TestSleepCtx_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	sleepCtx(ctx, time.Minute)
	assert.Less(t, time.Since(start), time.Second)
}

func TestByResultText_SkipsEditable(t *testing.T) {
	s := &Screen{Elements: []model.ScreenElement{
		fd.Field("Alice", "", 0, 100, 1080, 100),
		fd.Button("Alice Smith", "", 0, 600, 1080, 150),
	}}
	el := ByResultText("alice").Find(s)
	require.NotNil(t, el)
	assert.Equal(t, "Alice Smith", el.Text)
	assert.Nil(t, ByResultText("bob").Find(s))
}
