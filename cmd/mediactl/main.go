// Command mediactl uploads local files through the ticket endpoint and prints
// their public URLs, one per line.
//
//	mediactl -endpoint https://api.example.com/get-presigned-url -kind listing -owner 42 photo1.jpg photo2.png
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/princekumarofficial/marketplace-service/internal/upload"
)

const (
	kindListing      = "listing"
	kindItem         = "item"
	kindCampaign     = "campaign"
	kindProfile      = "profile"
	kindNGOProfile   = "ngo-profile"
	defaultTimeout   = 5 * time.Minute
	exitOK           = 0
	exitUsage        = 2
	exitUploadFailed = 1
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("mediactl", flag.ContinueOnError)
	fs.SetOutput(stderr)

	endpoint := fs.String("endpoint", os.Getenv("MEDIACTL_ENDPOINT"), "ticket endpoint URL")
	kind := fs.String("kind", kindListing, "listing (alias item), campaign, profile or ngo-profile")
	owner := fs.String("owner", "", "owner user id")
	asset := fs.String("asset", "", "item or campaign id (generated when empty)")
	mimeType := fs.String("type", "", "declared MIME type for every file")
	timeout := fs.Duration("timeout", defaultTimeout, "overall timeout")

	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *endpoint == "" || *owner == "" || fs.NArg() == 0 {
		fmt.Fprintln(stderr, "usage: mediactl -endpoint URL -owner ID [-kind KIND] [-asset ID] FILE...")
		return exitUsage
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	uploader, err := upload.New(*endpoint)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	files, err := readFiles(fs.Args(), *mimeType)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	if *kind == kindItem {
		*kind = kindListing
	}

	var urls []string
	switch *kind {
	case kindListing, kindCampaign:
		assetID := *asset
		if assetID == "" {
			assetID = uuid.New().String()
		}
		if *kind == kindListing {
			urls, err = uploader.ListingImages(ctx, *owner, assetID, files)
		} else {
			urls, err = uploader.CampaignImages(ctx, *owner, assetID, files)
		}
		if err == nil {
			fmt.Fprintf(stderr, "asset id: %s\n", assetID)
		}
	case kindProfile, kindNGOProfile:
		if len(files) != 1 {
			fmt.Fprintln(stderr, "profile uploads take exactly one file")
			return exitUsage
		}
		var u string
		if *kind == kindProfile {
			u, err = uploader.ProfilePhoto(ctx, *owner, files[0])
		} else {
			u, err = uploader.NGOProfilePhoto(ctx, *owner, files[0])
		}
		if err == nil {
			urls = []string{u}
		}
	default:
		fmt.Fprintf(stderr, "unknown kind %q\n", *kind)
		return exitUsage
	}

	for _, u := range urls {
		fmt.Fprintln(stdout, u)
	}

	if err != nil {
		var batchErr *upload.BatchError
		if errors.As(err, &batchErr) {
			fmt.Fprintf(stderr, "%s (file %d of %d, %d uploaded)\n",
				upload.UserMessage(err), batchErr.Index+1, len(files), len(batchErr.Uploaded))
		} else {
			fmt.Fprintln(stderr, upload.UserMessage(err))
		}
		return exitUploadFailed
	}

	return exitOK
}

func readFiles(paths []string, declared string) ([]upload.LocalFile, error) {
	files := make([]upload.LocalFile, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		files = append(files, upload.LocalFile{
			Data:             data,
			FileName:         filepath.Base(p),
			DeclaredMimeType: declared,
		})
	}
	return files, nil
}
