// Command import_bills ingests billing JSON files from a directory and
// creates invoices through the billing engine. Each file holds one
// create-billing payload. Run once over the existing files, or with -watch
// to keep processing files as they are dropped in.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/JrVava/laxmanBackend/pkg/billing"
)

func main() {
	dir := flag.String("dir", "", "directory containing billing JSON files")
	watch := flag.Bool("watch", false, "keep watching the directory for new files")
	workers := flag.Int("workers", 4, "number of import workers")
	flag.Parse()
	if *dir == "" {
		log.Fatal("usage: import_bills -dir <directory> [-watch] [-workers N]")
	}

	dsn := os.Getenv("DB_DSN")
	if strings.TrimSpace(dsn) == "" {
		log.Fatal("DB_DSN not set in environment")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}

	zlog := zap.Must(zap.NewDevelopmentConfig().Build()).Sugar()
	defer zlog.Sync()
	writer := billing.NewWriter(billing.NewStore(db), zlog)

	initial := listBillingFiles(*dir)
	log.Printf("found %d billing file(s) in %s", len(initial), *dir)

	if !*watch {
		fileCh := make(chan string, len(initial))
		for _, name := range initial {
			fileCh <- name
		}
		close(fileCh)
		runWorkerPool(*dir, writer, *workers, fileCh)
		return
	}

	if err := watchDirectory(*dir, writer, initial, *workers); err != nil {
		log.Fatalf("watch failed: %v", err)
	}
}

func listBillingFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !isBillingFile(e.Name()) {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out
}

func isBillingFile(name string) bool {
	// skip files already renamed after a successful import
	if strings.HasSuffix(name, ".imported") {
		return false
	}
	return strings.ToLower(filepath.Ext(name)) == ".json"
}

func watchDirectory(dir string, writer *billing.Writer, initial []string, workers int) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return err
	}
	log.Printf("Watching %s (debounced) ...", dir)

	fileCh := make(chan string, 256)
	for _, name := range initial {
		fileCh <- name
	}
	go func() {
		// debounce create events so half-written files settle first
		pending := map[string]time.Time{}
		ticker := time.NewTicker(250 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					close(fileCh)
					return
				}
				if ev.Op&fsnotify.Create == fsnotify.Create {
					name := filepath.Base(ev.Name)
					if !isBillingFile(name) {
						continue
					}
					pending[name] = time.Now()
				}
			case <-ticker.C:
				now := time.Now()
				for name, t := range pending {
					if now.Sub(t) > 300*time.Millisecond { // stable
						fileCh <- name
						delete(pending, name)
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					close(fileCh)
					return
				}
				log.Printf("watch error: %v", err)
			}
		}
	}()

	runWorkerPool(dir, writer, workers, fileCh)
	return nil
}

func runWorkerPool(dir string, writer *billing.Writer, workers int, fileCh <-chan string) {
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range fileCh {
				importFile(dir, name, writer)
			}
		}()
	}
	wg.Wait()
}

// importFile creates one invoice from a JSON payload file. Successful
// imports rename the file so reruns skip it; failures leave it in place.
func importFile(dir, name string, writer *billing.Writer) {
	path := filepath.Join(dir, name)
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Printf("%s: read failed: %v", name, err)
		return
	}
	var in billing.CreateInvoice
	if err := json.Unmarshal(raw, &in); err != nil {
		log.Printf("%s: invalid JSON: %v", name, err)
		return
	}
	id, err := writer.Create(in)
	if err != nil {
		log.Printf("%s: import failed: %v", name, err)
		return
	}
	if err := os.Rename(path, path+".imported"); err != nil {
		log.Printf("%s: imported as billing detail %d but rename failed: %v", name, id, err)
		return
	}
	log.Printf("%s: imported as billing detail %d", name, id)
}
