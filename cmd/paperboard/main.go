/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"paperboard/internal/assets"
	"paperboard/internal/config"
	"paperboard/internal/crash"
	"paperboard/internal/editor"
	"paperboard/internal/export"
	applog "paperboard/internal/log"
	"paperboard/internal/migrate"
	"paperboard/internal/scene"
	"paperboard/internal/session"
	"paperboard/internal/storage"
	"paperboard/internal/telemetry"
	"paperboard/internal/version"
)

func usage(w io.Writer) {
	fmt.Fprintln(w, "paperboard: annotation canvas tools")
	fmt.Fprintf(w, "Version: %s\n", version.String())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  paperboard version|-v|--version                 Show version")
	fmt.Fprintln(w, "  paperboard migrate <legacy.json> [out.json]     Convert a legacy item list to the current format")
	fmt.Fprintln(w, "  paperboard export <context> <out.png|out.pdf>   Render a stored scene")
	fmt.Fprintln(w, "  paperboard inspect <context>                    Print a summary of a stored scene")
	fmt.Fprintln(w, "  paperboard list                                 List stored contexts (sqlite only)")
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// saverRef lets the crash handler reach a session that is opened later.
type saverRef struct{ s *session.Session }

func (r *saverRef) ContextID() string {
	if r.s == nil {
		return ""
	}
	return r.s.ContextID()
}

func (r *saverRef) SaveNow(ctx context.Context) error {
	if r.s == nil {
		return nil
	}
	return r.s.SaveNow(ctx)
}

func run(args []string, stdout, stderr io.Writer) int {
	// initialize structured logging using environment defaults
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")

	if len(args) == 0 {
		usage(stdout)
		return 0
	}
	switch args[0] {
	case "version", "--version", "-v":
		fmt.Fprintln(stdout, "paperboard", version.String())
		return 0
	case "help", "-h", "--help":
		usage(stdout)
		return 0
	case "migrate":
		if len(args) < 2 {
			fmt.Fprintln(stderr, "migrate requires <legacy.json>")
			usage(stderr)
			return 2
		}
		out := ""
		if len(args) > 2 {
			out = args[2]
		}
		if err := migrateFile(args[1], out, stdout); err != nil {
			l.Error("migrate failed", slog.Any("err", err))
			fmt.Fprintln(stderr, "Error:", err)
			return 1
		}
		return 0
	}

	cfg, secret, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, "Error: config:", err)
		return 1
	}
	applog.Init(applog.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format, AddSource: cfg.Logging.Source, File: cfg.Logging.File})
	l = applog.WithComponent("cli")

	tc := telemetry.FromEnv()
	tc.OptIn = cfg.Telemetry.OptIn
	if cfg.Telemetry.EventsURL != "" {
		tc.EventsURL = cfg.Telemetry.EventsURL
	}
	telemetry.NewDefault(tc)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		telemetry.Default().Flush(ctx)
	}()

	reportDir := ""
	if dir, err := config.DataDir(); err == nil {
		reportDir = filepath.Join(dir, "crash")
	}
	ref := &saverRef{}
	defer crash.Recover(ref, reportDir)

	ctx := context.Background()
	st, err := openStore(ctx, cfg, secret)
	if err != nil {
		l.Error("open storage failed", slog.Any("err", err))
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	defer func() {
		if err := st.Close(); err != nil {
			l.Warn("close storage failed", slog.Any("err", err))
		}
	}()

	switch args[0] {
	case "list":
		sq, ok := st.(*storage.SQLiteStore)
		if !ok {
			fmt.Fprintln(stderr, "list is only supported by the sqlite driver")
			return 2
		}
		ids, err := sq.Contexts(ctx)
		if err != nil {
			fmt.Fprintln(stderr, "Error:", err)
			return 1
		}
		for _, id := range ids {
			fmt.Fprintln(stdout, id)
		}
		return 0
	case "export", "inspect":
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", args[0])
		usage(stderr)
		return 2
	}

	need := 2
	if args[0] == "export" {
		need = 3
	}
	if len(args) < need {
		fmt.Fprintf(stderr, "%s requires %s\n", args[0], map[string]string{"export": "<context> <out.png|out.pdf>", "inspect": "<context>"}[args[0]])
		usage(stderr)
		return 2
	}

	ed := editor.New(editor.Options{HistoryCapacity: cfg.Editor.HistoryCapacity, ZoomStep: cfg.Editor.ZoomStep})
	sess, err := session.New(session.Options{Store: st, Editor: ed, Debounce: cfg.Editor.SaveDebounce()})
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	ref.s = sess
	defer func() {
		if err := sess.Close(ctx); err != nil {
			l.Warn("close session failed", slog.Any("err", err))
		}
	}()
	contextID := args[1]
	if err := sess.Open(ctx, contextID); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	if sess.LoadFailed() {
		l.Warn("stored scene could not be read; using an empty scene", slog.String("context", contextID))
	}

	if args[0] == "inspect" {
		inspect(ctx, stdout, st, sess, ed)
		return 0
	}
	blobs, _ := st.(storage.BlobStore)
	if err := exportScene(ctx, ed, args[2], blobs); err != nil {
		l.Error("export failed", slog.Any("err", err))
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	fmt.Fprintln(stdout, "Exported", contextID, "to", args[2])
	return 0
}

func openStore(ctx context.Context, cfg config.AppConfig, secret string) (storage.Store, error) {
	path, err := cfg.Storage.ResolvedPath()
	if err != nil {
		return nil, err
	}
	st, err := storage.Open(ctx, storage.Config{
		Driver:           cfg.Storage.Driver,
		Path:             path,
		PostgresDSN:      cfg.Storage.PostgresDSN,
		PostgresPassword: secret,
	})
	if err != nil {
		return nil, err
	}
	if fs, ok := st.(*storage.FileStore); ok {
		fs.KeepBackups = cfg.Storage.KeepBackups
	}
	return st, nil
}

func migrateFile(in, out string, stdout io.Writer) error {
	raw, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	if scene.IsCurrentFormat(raw) {
		return errors.New("document is already in the current format")
	}
	items, err := migrate.ParseLegacy(raw)
	if err != nil {
		return err
	}
	list, assetList, err := migrate.OldToNew(items)
	if err != nil {
		return err
	}
	ed := editor.New(editor.Options{})
	ed.LoadState(list, assetList)
	doc := ed.ToJSON()
	if doc == "" {
		return errors.New("serialize migrated scene failed")
	}
	if err := scene.Validate([]byte(doc)); err != nil {
		return err
	}
	telemetry.Event(telemetry.EventMigrated, map[string]any{"items": len(items), "shapes": len(list)})
	if out == "" {
		_, err = fmt.Fprintln(stdout, doc)
		return err
	}
	return os.WriteFile(out, []byte(doc), 0o644)
}

func exportScene(ctx context.Context, ed *editor.Editor, out string, blobs storage.BlobStore) error {
	cmds := ed.Render()
	opt := export.Options{Images: assets.DecoderWith(blobs)}
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(out), "."))
	var err error
	switch format {
	case "png":
		err = export.PNGFile(ctx, out, cmds, opt)
	case "pdf":
		err = export.PDFFile(ctx, out, cmds, export.PDFOptions{Options: opt, Title: filepath.Base(out)})
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
	if err != nil {
		return err
	}
	telemetry.Event(telemetry.EventExported, map[string]any{"format": format, "commands": len(cmds)})
	return nil
}

func inspect(ctx context.Context, w io.Writer, st storage.Store, sess *session.Session, ed *editor.Editor) {
	list := ed.GetShapes()
	counts := map[string]int{}
	for _, s := range list {
		counts[string(s.Type)]++
	}
	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Strings(types)

	fmt.Fprintf(w, "Context: %s\n", sess.ContextID())
	if sq, ok := st.(*storage.SQLiteStore); ok {
		if rev, err := sq.Revision(ctx, sess.ContextID()); err == nil {
			fmt.Fprintf(w, "Revision: %d\n", rev)
		}
	}
	if sess.LoadFailed() {
		fmt.Fprintln(w, "Load: failed (showing empty scene)")
	}
	fmt.Fprintf(w, "Shapes: %d\n", len(list))
	for _, t := range types {
		fmt.Fprintf(w, "  %s: %d\n", t, counts[t])
	}
	fmt.Fprintf(w, "Assets: %d\n", len(ed.GetAssets()))
	cam := ed.Camera()
	fmt.Fprintf(w, "Camera: x=%.1f y=%.1f zoom=%.2f\n", cam.X, cam.Y, cam.Zoom)
}
