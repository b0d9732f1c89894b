package telegram

import (
	"context"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Alpharobocup/bot-all/internal/domain"
)

// --- fakes ---

type sentText struct {
	chat string
	text string
}

type fakeGateway struct {
	texts     []sentText
	menus     []string // texts of keyboard-carrying sends
	photos    []string // names of photos sent
	files     map[string][]byte
	callbacks []string
}

func (g *fakeGateway) Send(ctx context.Context, c tgbotapi.Chattable) error {
	if mc, ok := c.(tgbotapi.MessageConfig); ok {
		g.menus = append(g.menus, mc.Text)
	}
	return nil
}

func (g *fakeGateway) SendText(ctx context.Context, chat, text string) error {
	g.texts = append(g.texts, sentText{chat: chat, text: text})
	return nil
}

func (g *fakeGateway) SendPhoto(ctx context.Context, chat, name string, photo []byte) error {
	g.photos = append(g.photos, name)
	return nil
}

func (g *fakeGateway) FetchFile(ctx context.Context, fileID string) ([]byte, error) {
	if data, ok := g.files[fileID]; ok {
		return data, nil
	}
	return nil, domain.ErrDelivery
}

func (g *fakeGateway) AnswerCallback(ctx context.Context, callbackID string) error {
	g.callbacks = append(g.callbacks, callbackID)
	return nil
}

type storedEntry struct {
	id     int64
	chat   string
	at     domain.FireTime
	text   string
	active bool
}

type fakeRepo struct {
	entries []storedEntry
	notes   []domain.Note
	nextID  int64
}

func (f *fakeRepo) CreateScheduled(ctx context.Context, chat string, ft domain.FireTime, text string) (int64, error) {
	f.nextID++
	f.entries = append(f.entries, storedEntry{id: f.nextID, chat: chat, at: ft, text: text, active: true})
	return f.nextID, nil
}

func (f *fakeRepo) ListScheduled(ctx context.Context) ([]domain.ScheduledEntry, error) {
	var out []domain.ScheduledEntry
	for _, e := range f.entries {
		out = append(out, domain.ScheduledEntry{ID: e.id, Chat: e.chat, FireTime: e.at, Text: e.text, Active: e.active})
	}
	return out, nil
}

func (f *fakeRepo) SetScheduledActive(ctx context.Context, id int64, active bool) error {
	for i := range f.entries {
		if f.entries[i].id == id {
			f.entries[i].active = active
		}
	}
	return nil
}

func (f *fakeRepo) CreateNote(ctx context.Context, owner int64, content string) (int64, error) {
	f.nextID++
	f.notes = append(f.notes, domain.Note{ID: f.nextID, OwnerID: owner, Content: content})
	return f.nextID, nil
}

func (f *fakeRepo) ListNotes(ctx context.Context, owner int64) ([]domain.Note, error) {
	var out []domain.Note
	// newest first
	for i := len(f.notes) - 1; i >= 0; i-- {
		if f.notes[i].OwnerID == owner {
			out = append(out, f.notes[i])
		}
	}
	return out, nil
}

func (f *fakeRepo) Close() error { return nil }

type fakeSearcher struct {
	results []string
	queries []string
}

func (f *fakeSearcher) Search(ctx context.Context, query string, limit int) ([]string, error) {
	f.queries = append(f.queries, query)
	if limit < len(f.results) {
		return f.results[:limit], nil
	}
	return f.results, nil
}

type fakeDecoder struct{ payloads []string }

func (f *fakeDecoder) Decode(image []byte) ([]string, error) { return f.payloads, nil }

type fakeRenderer struct{}

func (fakeRenderer) Render(text string) ([]byte, error) { return []byte("png"), nil }

// --- helpers ---

type testEnv struct {
	router *Router
	gw     *fakeGateway
	repo   *fakeRepo
	search *fakeSearcher
	decode *fakeDecoder
}

func newTestEnv(channel string) *testEnv {
	gw := &fakeGateway{files: map[string][]byte{}}
	repo := &fakeRepo{}
	search := &fakeSearcher{}
	decode := &fakeDecoder{}
	router := NewRouter(Deps{
		Gateway: gw,
		Repo:    repo,
		Log:     zap.NewNop(),
		Search:  search,
		Barcode: decode,
		Render:  fakeRenderer{},
		Channel: channel,
	})
	return &testEnv{router: router, gw: gw, repo: repo, search: search, decode: decode}
}

func commandUpdate(chatID, userID int64, text string) tgbotapi.Update {
	cmd := strings.Fields(text)[0]
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text: text,
		Chat: &tgbotapi.Chat{ID: chatID},
		From: &tgbotapi.User{ID: userID},
		Entities: []tgbotapi.MessageEntity{
			{Type: "bot_command", Offset: 0, Length: len(cmd)},
		},
	}}
}

func textUpdate(chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text: text,
		Chat: &tgbotapi.Chat{ID: chatID},
		From: &tgbotapi.User{ID: chatID},
	}}
}

func callbackUpdate(chatID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb1",
		Data:    data,
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}},
	}}
}

func lastText(t *testing.T, gw *fakeGateway) sentText {
	t.Helper()
	if len(gw.texts) == 0 {
		t.Fatal("no text replies sent")
	}
	return gw.texts[len(gw.texts)-1]
}

// --- tests ---

func TestScheduleCommand(t *testing.T) {
	env := newTestEnv("@channel")

	env.router.HandleUpdate(context.Background(), commandUpdate(1, 1, "/schedule 14:30 | hello"))

	if len(env.repo.entries) != 1 {
		t.Fatalf("got %d stored entries, want 1", len(env.repo.entries))
	}
	e := env.repo.entries[0]
	if e.chat != "@channel" || e.at.String() != "14:30" || e.text != "hello" || !e.active {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if !strings.Contains(lastText(t, env.gw).text, "14:30") {
		t.Fatalf("confirmation missing time: %q", lastText(t, env.gw).text)
	}
}

func TestScheduleCommandFallsBackToSenderChat(t *testing.T) {
	env := newTestEnv("")

	env.router.HandleUpdate(context.Background(), commandUpdate(99, 1, "/schedule 08:00 | morning"))

	if len(env.repo.entries) != 1 || env.repo.entries[0].chat != "99" {
		t.Fatalf("unexpected entries: %+v", env.repo.entries)
	}
}

func TestScheduleCommandMalformed(t *testing.T) {
	env := newTestEnv("@channel")

	env.router.HandleUpdate(context.Background(), commandUpdate(1, 1, "/schedule 14:30 hello"))

	if len(env.repo.entries) != 0 {
		t.Fatalf("malformed command wrote to store: %+v", env.repo.entries)
	}
	if lastText(t, env.gw).text != scheduleUsage {
		t.Fatalf("expected usage hint, got %q", lastText(t, env.gw).text)
	}
}

func TestUnscheduleCommand(t *testing.T) {
	env := newTestEnv("@channel")
	env.router.HandleUpdate(context.Background(), commandUpdate(1, 1, "/schedule 14:30 | hello"))

	env.router.HandleUpdate(context.Background(), commandUpdate(1, 1, "/unschedule 1"))

	if env.repo.entries[0].active {
		t.Fatal("entry still active after /unschedule")
	}
}

func TestUnscheduleCommandBadID(t *testing.T) {
	env := newTestEnv("@channel")

	env.router.HandleUpdate(context.Background(), commandUpdate(1, 1, "/unschedule soon"))

	if lastText(t, env.gw).text != unscheduleUsage {
		t.Fatalf("expected usage hint, got %q", lastText(t, env.gw).text)
	}
}

func TestNotesFlow(t *testing.T) {
	env := newTestEnv("@channel")
	ctx := context.Background()

	env.router.HandleUpdate(ctx, commandUpdate(5, 42, "/addnote buy milk"))
	env.router.HandleUpdate(ctx, commandUpdate(5, 42, "/mynotes"))

	got := lastText(t, env.gw).text
	if !strings.Contains(got, "buy milk") {
		t.Fatalf("notes listing missing content: %q", got)
	}

	// Another user sees nothing.
	env.router.HandleUpdate(ctx, commandUpdate(6, 43, "/mynotes"))
	if lastText(t, env.gw).text != "You have no notes." {
		t.Fatalf("owner isolation broken: %q", lastText(t, env.gw).text)
	}
}

func TestAddNoteEmpty(t *testing.T) {
	env := newTestEnv("@channel")

	env.router.HandleUpdate(context.Background(), commandUpdate(5, 42, "/addnote"))

	if len(env.repo.notes) != 0 {
		t.Fatalf("empty note stored: %+v", env.repo.notes)
	}
	if lastText(t, env.gw).text != addnoteUsage {
		t.Fatalf("expected usage hint, got %q", lastText(t, env.gw).text)
	}
}

func TestImgCommand(t *testing.T) {
	env := newTestEnv("@channel")

	env.router.HandleUpdate(context.Background(), commandUpdate(1, 1, "/img hello"))

	if len(env.gw.photos) != 1 {
		t.Fatalf("got %d photos, want 1", len(env.gw.photos))
	}
}

func TestFreeTextExternalLinkEcho(t *testing.T) {
	env := newTestEnv("@channel")
	link := "https://www.aparat.com/v/xxxxx"

	env.router.HandleUpdate(context.Background(), textUpdate(1, link))

	if lastText(t, env.gw).text != link {
		t.Fatalf("link not echoed: %q", lastText(t, env.gw).text)
	}
}

func TestFreeTextSearchDirective(t *testing.T) {
	env := newTestEnv("@channel")
	env.search.results = []string{"https://a", "https://b"}

	env.router.HandleUpdate(context.Background(), textUpdate(1, "/search golang"))

	if len(env.search.queries) != 1 || env.search.queries[0] != "golang" {
		t.Fatalf("unexpected queries: %v", env.search.queries)
	}
	got := lastText(t, env.gw).text
	if !strings.Contains(got, "https://a") || !strings.Contains(got, "https://b") {
		t.Fatalf("results missing from reply: %q", got)
	}
}

func TestFreeTextSearchNoResults(t *testing.T) {
	env := newTestEnv("@channel")

	env.router.HandleUpdate(context.Background(), textUpdate(1, "/search nothing"))

	if lastText(t, env.gw).text != "No results found." {
		t.Fatalf("got %q", lastText(t, env.gw).text)
	}
}

func TestFreeTextPlainFallsBackToMenu(t *testing.T) {
	env := newTestEnv("@channel")

	env.router.HandleUpdate(context.Background(), textUpdate(1, "just chatting"))

	if len(env.gw.menus) != 1 || env.gw.menus[0] != plainTextReply {
		t.Fatalf("expected menu prompt, got %v", env.gw.menus)
	}
}

func TestStartSendsMenu(t *testing.T) {
	env := newTestEnv("@channel")

	env.router.HandleUpdate(context.Background(), commandUpdate(1, 1, "/start"))

	if len(env.gw.menus) != 1 || env.gw.menus[0] != menuText {
		t.Fatalf("expected menu, got %v", env.gw.menus)
	}
}

func TestCallbackKnownKey(t *testing.T) {
	env := newTestEnv("@channel")

	env.router.HandleUpdate(context.Background(), callbackUpdate(1, "barcode"))

	if len(env.gw.callbacks) != 1 {
		t.Fatal("callback not acknowledged")
	}
	if lastText(t, env.gw).text != callbackPrompts["barcode"] {
		t.Fatalf("got %q", lastText(t, env.gw).text)
	}
}

func TestCallbackUnknownKey(t *testing.T) {
	env := newTestEnv("@channel")

	env.router.HandleUpdate(context.Background(), callbackUpdate(1, "weather"))

	if lastText(t, env.gw).text != featureNotInstalled("weather") {
		t.Fatalf("got %q", lastText(t, env.gw).text)
	}
}

func TestPhotoWithBarcode(t *testing.T) {
	env := newTestEnv("@channel")
	env.gw.files["file1"] = []byte("imagebytes")
	env.decode.payloads = []string{"4006381333931"}
	env.search.results = []string{"https://product"}

	upd := tgbotapi.Update{Message: &tgbotapi.Message{
		Chat:  &tgbotapi.Chat{ID: 1},
		From:  &tgbotapi.User{ID: 1},
		Photo: []tgbotapi.PhotoSize{{FileID: "thumb"}, {FileID: "file1"}},
	}}
	env.router.HandleUpdate(context.Background(), upd)

	if len(env.gw.texts) != 2 {
		t.Fatalf("got %d replies, want 2: %+v", len(env.gw.texts), env.gw.texts)
	}
	if !strings.Contains(env.gw.texts[0].text, "4006381333931") {
		t.Fatalf("decoded value missing: %q", env.gw.texts[0].text)
	}
	if env.gw.texts[1].text != "https://product" {
		t.Fatalf("search links missing: %q", env.gw.texts[1].text)
	}
}

func TestPhotoWithoutBarcode(t *testing.T) {
	env := newTestEnv("@channel")
	env.gw.files["file1"] = []byte("imagebytes")

	upd := tgbotapi.Update{Message: &tgbotapi.Message{
		Chat:  &tgbotapi.Chat{ID: 1},
		From:  &tgbotapi.User{ID: 1},
		Photo: []tgbotapi.PhotoSize{{FileID: "file1"}},
	}}
	env.router.HandleUpdate(context.Background(), upd)

	if lastText(t, env.gw).text != photoAck {
		t.Fatalf("got %q", lastText(t, env.gw).text)
	}
}
