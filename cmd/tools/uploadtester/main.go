package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Paveld-cloud/imgbb-bot/internal/config"
	hostmodel "github.com/Paveld-cloud/imgbb-bot/internal/model/imagehost"
	uploadmodel "github.com/Paveld-cloud/imgbb-bot/internal/model/upload"
	"github.com/Paveld-cloud/imgbb-bot/internal/service/convert"
	"github.com/Paveld-cloud/imgbb-bot/internal/service/imagehost"
)

// uploadtester pushes a local image through the convert-and-upload pipeline
// without involving Telegram. Useful for checking imgbb credentials.
func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if err := godotenv.Load(); err != nil {
		log.Printf("[WARN] .env not loaded, using system environment: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	imagePath := flag.String("image", "", "path to the source image")
	name := flag.String("name", "", "filename stem for the upload (default: source file name)")
	timeout := flag.Duration("timeout", 45*time.Second, "request timeout")

	flag.Parse()

	if *imagePath == "" {
		flag.Usage()
		log.Fatal("provide the source image via -image")
	}

	data, err := os.ReadFile(*imagePath)
	if err != nil {
		log.Fatalf("failed to read %s: %v", *imagePath, err)
	}

	stem := strings.TrimSpace(*name)
	if stem == "" {
		base := filepath.Base(*imagePath)
		stem = strings.TrimSuffix(base, filepath.Ext(base))
	}
	stem, ok := uploadmodel.SanitizeIdentifier(stem)
	if !ok {
		log.Fatal("invalid name: letters, digits, _ and - only, 2 to 64 characters")
	}

	png, format, err := convert.ToPNG(data)
	if err != nil {
		log.Fatalf("failed to convert %s: %v", *imagePath, err)
	}
	log.Printf("decoded %s source, %d bytes after conversion", format, len(png))

	if len(png) > uploadmodel.MaxImageBytes {
		log.Fatalf("converted PNG is %d bytes, over the %d byte cap", len(png), uploadmodel.MaxImageBytes)
	}

	client := imagehost.NewClient(&hostmodel.Config{
		APIKey:  cfg.ImgBB.APIKey,
		BaseURL: cfg.ImgBB.BaseURL,
		Timeout: cfg.ImgBB.Timeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	res, err := client.Upload(ctx, stem, png)
	if err != nil {
		log.Fatalf("upload failed: %v", err)
	}

	log.Printf("uploaded %s: url=%s size=%d bytes", res.Filename, res.URL, res.Size)
	if res.DeleteURL != "" {
		log.Printf("delete url: %s", res.DeleteURL)
	}
}
