package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/atotto/clipboard"
	log "github.com/sirupsen/logrus"

	"gitlab.com/dirk.krummacker/businesscard-service/internal/download"
	"gitlab.com/dirk.krummacker/businesscard-service/internal/model"
	"gitlab.com/dirk.krummacker/businesscard-service/internal/nfc"
	"gitlab.com/dirk.krummacker/businesscard-service/internal/qrcode"
	"gitlab.com/dirk.krummacker/businesscard-service/internal/share"
	"gitlab.com/dirk.krummacker/businesscard-service/internal/vcard"
	wire "gitlab.com/dirk.krummacker/businesscard-service/pkg/model"
)

// systemClipboard writes to the clipboard of the desktop session.
type systemClipboard struct{}

func (systemClipboard) WriteText(_ context.Context, text string) error {
	if clipboard.Unsupported {
		return errors.New("clipboard not supported on this system")
	}
	return clipboard.WriteAll(text)
}

// Usage example on the command line:
// > go run main.go -server http://localhost:8080 -dir /tmp qr 6f1c2a9e-8d2b-4f6e-9a51-3c7d0b1e2f44
//
// Commands: show, share, copy-link, vcard, qr, nfc.
func main() {
	server := flag.String("server", "http://localhost:8080", "base URL of the business card service")
	dir := flag.String("dir", ".", "directory downloads are saved to")
	flag.Parse()
	if flag.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "usage: client [-server URL] [-dir DIR] show|share|copy-link|vcard|qr|nfc CARD_ID")
		os.Exit(2)
	}
	command, id := flag.Arg(0), flag.Arg(1)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := run(ctx, *server, *dir, command, id); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, server string, dir string, command string, id string) error {
	var card wire.Card
	if err := getJSON(ctx, server+"/cards/"+id, &card); err != nil {
		return err
	}
	var payload wire.SharePayload
	if err := getJSON(ctx, server+"/cards/"+id+"/share", &payload); err != nil {
		return err
	}
	snapshot := model.Card(card)
	saver := download.DiskSaver{Dir: dir}

	switch command {
	case "show":
		fmt.Printf("%s (%s)\n%s\n", snapshot.Name, snapshot.Title, payload.URL)
	case "share":
		report(newDispatcher(systemClipboard{}).Share(ctx, snapshot, payload.URL))
	case "copy-link":
		report(newDispatcher(systemClipboard{}).CopyLink(ctx, payload.URL))
	case "vcard":
		if err := vcard.TriggerDownload(saver, vcard.Encode(snapshot), snapshot.Name); err != nil {
			return err
		}
		fmt.Println("saved", download.SafeName(vcard.FileName(snapshot.Name)))
	case "qr":
		canvas := qrcode.NewCanvas()
		if _, err := qrcode.Render(canvas, payload.URL); err != nil {
			return err
		}
		if !qrcode.ExportAsImage(canvas, snapshot.Name, saver) {
			return errors.New("could not save QR code")
		}
		fmt.Println("saved", download.SafeName(qrcode.FileName(snapshot.Name)))
	case "nfc":
		writer := nfc.NewWriter(nil)
		if err := writer.Write(ctx, payload.URL); err != nil {
			var writeErr *nfc.WriteError
			if errors.As(err, &writeErr) {
				fmt.Println(writeErr.Message)
				return nil
			}
			return err
		}
		fmt.Println("NFC tag written")
	default:
		return fmt.Errorf("unknown command %q", command)
	}
	return nil
}

// newDispatcher returns the dispatcher of a terminal: no share sheet, and no copied indicator
// since the process ends right after reporting.
func newDispatcher(clip share.Clipboard) *share.Dispatcher {
	dispatcher := share.NewDispatcher(nil, clip)
	dispatcher.Indicator = nil
	return dispatcher
}

func report(result share.Result) {
	switch result.Outcome {
	case share.Copied:
		fmt.Println("Link copied!")
	case share.Failed:
		fmt.Println(result.Message)
	default:
		fmt.Println(result.Outcome)
	}
}

func getJSON(ctx context.Context, requestURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("error making http request: %w", err)
	}
	defer res.Body.Close()
	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("could not read response body: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		var msg wire.Message
		json.Unmarshal(resBody, &msg)
		return fmt.Errorf("%s: %s %s", requestURL, res.Status, msg.Message)
	}
	if err := json.Unmarshal(resBody, v); err != nil {
		return fmt.Errorf("could not unmarshal JSON: %w", err)
	}
	return nil
}
