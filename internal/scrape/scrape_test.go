package scrape

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/osrs-kit/spritefetch/internal/imaging"
	"github.com/osrs-kit/spritefetch/internal/store"
	"github.com/osrs-kit/spritefetch/internal/wiki"
)

// testEnv wires a fake wiki, a fake image host, and a temp-dir sink together.
type testEnv struct {
	server   *httptest.Server
	sink     *store.DiskSink
	scraper  *Scraper
	messages *[]string
}

// newTestEnv serves pages (title -> markup) and images (path -> PNG bytes)
// from one server so resolved sprite URLs point back at it.
func newTestEnv(t *testing.T, pages map[string]string, images map[string][]byte) *testEnv {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api.php", func(w http.ResponseWriter, r *http.Request) {
		title := r.URL.Query().Get("titles")
		markup, ok := pages[title]
		if !ok {
			fmt.Fprint(w, `{"query":{"pages":{"-1":{"missing":""}}}}`)
			return
		}
		fmt.Fprintf(w, `{"query":{"pages":{"7":{"pageid":7,"revisions":[{"*":%q}]}}}}`, markup)
	})
	mux.HandleFunc("/images/", func(w http.ResponseWriter, r *http.Request) {
		data, ok := images[strings.TrimPrefix(r.URL.Path, "/images/")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(data)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	var messages []string
	notify := func(msg string) { messages = append(messages, msg) }

	sink := store.NewDiskSink(t.TempDir())
	client := wiki.NewClient(server.URL, nil, nil)
	fetcher := imaging.NewFetcher(server.Client(), nil, "spritefetch-test")

	return &testEnv{
		server:   server,
		sink:     sink,
		scraper:  New(client, fetcher, sink, notify),
		messages: &messages,
	}
}

func (e *testEnv) joined() string { return strings.Join(*e.messages, "\n") }

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test PNG: %v", err)
	}
	return buf.Bytes()
}

func listFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		t.Fatalf("failed to list %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestRun_BankVariantWithOneMissingPage(t *testing.T) {
	env := newTestEnv(t,
		map[string]string{"Lobster": "[[File:Lobster.png]]"},
		map[string][]byte{"Lobster.png": pngBytes(t, 20, 20)},
	)

	results := env.scraper.Run(context.Background(), "lobster, lobster pot", VariantBank)

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Name != "Lobster" || results[0].Skipped() {
		t.Errorf("Lobster should succeed: %+v", results[0])
	}
	if results[1].Name != "Lobster_Pot" || !results[1].Skipped() {
		t.Errorf("Lobster_Pot should be skipped: %+v", results[1])
	}

	files := listFiles(t, env.sink.Destination())
	if len(files) != 1 || files[0] != "Lobster_bank.png" {
		t.Errorf("files = %v, want exactly [Lobster_bank.png]", files)
	}

	if !strings.Contains(env.joined(), "No image found for Lobster_Pot.") {
		t.Errorf("missing skip notification naming Lobster_Pot:\n%s", env.joined())
	}

	// The bank variant is framed to the slot size with the stack strip erased.
	f, err := os.Open(filepath.Join(env.sink.Destination(), "Lobster_bank.png"))
	if err != nil {
		t.Fatalf("failed to open bank sprite: %v", err)
	}
	defer f.Close()
	banked, err := png.Decode(f)
	if err != nil {
		t.Fatalf("bank sprite is not a valid PNG: %v", err)
	}
	if b := banked.Bounds(); b.Dx() != imaging.BankFrameWidth || b.Dy() != imaging.BankFrameHeight {
		t.Errorf("bank sprite is %dx%d, want %dx%d", b.Dx(), b.Dy(), imaging.BankFrameWidth, imaging.BankFrameHeight)
	}
}

func TestRun_NonexistentSpriteProducesNoFiles(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	results := env.scraper.Run(context.Background(), "nonexistent_sprite", VariantNormal)

	if len(results) != 1 || !results[0].Skipped() {
		t.Fatalf("expected one skipped result, got %+v", results)
	}
	if files := listFiles(t, env.sink.Destination()); len(files) != 0 {
		t.Errorf("no files expected, found %v", files)
	}

	joined := env.joined()
	if !strings.Contains(joined, "No image found for Nonexistent_sprite.") {
		t.Errorf("missing skip notification:\n%s", joined)
	}
	if !strings.Contains(joined, "Search complete.") {
		t.Errorf("missing completion notification:\n%s", joined)
	}
}

func TestRun_TransportFailureIsIsolatedToItem(t *testing.T) {
	env := newTestEnv(t,
		map[string]string{
			"Shark":     "[[File:Shark.png]]",
			"Lobster":   "[[File:Lobster.png]]",
			"Swordfish": "[[File:Swordfish.png]]",
		},
		map[string][]byte{
			"Shark.png":     pngBytes(t, 18, 18),
			"Swordfish.png": pngBytes(t, 18, 18),
			// Lobster.png missing: the image GET 404s.
		},
	)

	results := env.scraper.Run(context.Background(), "shark, lobster, swordfish", VariantNormal)

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].Skipped() || results[2].Skipped() {
		t.Errorf("neighbors of the failing item should succeed: %+v", results)
	}
	if !results[1].Skipped() {
		t.Errorf("Lobster should fail on download: %+v", results[1])
	}

	files := listFiles(t, env.sink.Destination())
	if len(files) != 2 {
		t.Errorf("files = %v, want Shark.png and Swordfish.png", files)
	}
	if !strings.Contains(env.joined(), "Network error:") {
		t.Errorf("missing network error notification:\n%s", env.joined())
	}
}

func TestRun_DecodeFailureIsIsolatedToItem(t *testing.T) {
	env := newTestEnv(t,
		map[string]string{"Lobster": "[[File:Lobster.png]]"},
		map[string][]byte{"Lobster.png": []byte("definitely not an image")},
	)

	results := env.scraper.Run(context.Background(), "lobster", VariantNormal)

	if len(results) != 1 || !results[0].Skipped() {
		t.Fatalf("expected one skipped result, got %+v", results)
	}
	if !strings.Contains(env.joined(), "Image decoding error:") {
		t.Errorf("missing decode error notification:\n%s", env.joined())
	}
}

func TestRun_BothVariantWritesTwoFiles(t *testing.T) {
	env := newTestEnv(t,
		map[string]string{"Lobster": "[[File:Lobster.png]]"},
		map[string][]byte{"Lobster.png": pngBytes(t, 20, 20)},
	)

	results := env.scraper.Run(context.Background(), "lobster", VariantBoth)

	if len(results) != 1 || results[0].Skipped() {
		t.Fatalf("expected one successful result, got %+v", results)
	}
	if len(results[0].Written) != 2 {
		t.Errorf("written = %v, want two paths", results[0].Written)
	}

	files := listFiles(t, env.sink.Destination())
	want := map[string]bool{"Lobster.png": true, "Lobster_bank.png": true}
	if len(files) != 2 {
		t.Fatalf("files = %v, want two", files)
	}
	for _, f := range files {
		if !want[f] {
			t.Errorf("unexpected file %s", f)
		}
	}
}

func TestRun_OversizedSpriteIsStillWritten(t *testing.T) {
	env := newTestEnv(t,
		map[string]string{"Giant_Thing": "[[File:Giant thing.png]]"},
		map[string][]byte{"Giant_thing.png": pngBytes(t, 64, 64)},
	)

	results := env.scraper.Run(context.Background(), "giant thing", VariantBank)

	if len(results) != 1 || results[0].Skipped() {
		t.Fatalf("expected a successful result, got %+v", results)
	}
	if !results[0].Oversized {
		t.Error("expected oversize flag")
	}
	files := listFiles(t, env.sink.Destination())
	if len(files) != 1 || files[0] != "Giant_Thing_bank.png" {
		t.Errorf("files = %v, want [Giant_Thing_bank.png]", files)
	}
	if !strings.Contains(env.joined(), "Warning:") {
		t.Errorf("missing oversize warning:\n%s", env.joined())
	}
}

func TestRun_InvalidVariantAbortsRun(t *testing.T) {
	env := newTestEnv(t,
		map[string]string{"Lobster": "[[File:Lobster.png]]"},
		map[string][]byte{"Lobster.png": pngBytes(t, 20, 20)},
	)

	results := env.scraper.Run(context.Background(), "lobster", Variant("sideways"))

	if results != nil {
		t.Errorf("expected nil results, got %+v", results)
	}
	if len(*env.messages) != 1 || (*env.messages)[0] != "Invalid image type argument." {
		t.Errorf("want single invalid-selector notification, got %v", *env.messages)
	}
	if files := listFiles(t, env.sink.Destination()); len(files) != 0 {
		t.Errorf("no files expected, found %v", files)
	}
}

func TestRun_EmptyRequestAbortsRun(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	results := env.scraper.Run(context.Background(), "   ", VariantNormal)

	if results != nil {
		t.Errorf("expected nil results, got %+v", results)
	}
	if len(*env.messages) != 1 || (*env.messages)[0] != "No search terms entered." {
		t.Errorf("want single empty-request notification, got %v", *env.messages)
	}
}

func TestRun_ProgressHook(t *testing.T) {
	env := newTestEnv(t,
		map[string]string{"Lobster": "[[File:Lobster.png]]"},
		map[string][]byte{"Lobster.png": pngBytes(t, 20, 20)},
	)

	var steps []int
	env.scraper.SetProgress(func(done, total int) {
		if total != 2 {
			t.Errorf("total = %d, want 2", total)
		}
		steps = append(steps, done)
	})

	env.scraper.Run(context.Background(), "lobster, shark", VariantNormal)

	if len(steps) != 2 || steps[0] != 1 || steps[1] != 2 {
		t.Errorf("progress steps = %v, want [1 2]", steps)
	}
}
