package main

import (
	"os"

	"image-selector/internal/app"
	"image-selector/internal/cli"
	"image-selector/internal/opencv/preview"
)

func main() {
	os.Exit(cli.Execute(cli.Options{
		Version: app.AppVersion,
		Decoder: preview.NewDecoder(),
		RunGUI:  app.Run,
	}))
}
