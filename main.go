package main

import (
	"log"

	"quill/crud"
	"quill/database"
	"quill/http"
	"quill/storage"
)

// main is the app's entry point.
func main() {
	// Load configuration from the environment / an optional config file.
	config := LoadConfig()

	// Open a database connection and execute migrations.
	db := database.NewDB(config.Database.ConnectionInfo())
	err := database.Open(db, config.IsProd())
	must(err)
	defer database.Close(db)
	err = database.AutoMigrate(db)
	must(err)

	// Start the crud services.
	services, err := crud.NewServices(
		db.Gorm,
		crud.WithUser(config.Pepper, config.HMACKey),
		crud.WithGroup(),
		crud.WithPost(),
		crud.WithComment(),
		crud.WithFollow(),
		crud.WithFeed(config.PageSize, config.FeedCacheTTL),
	)
	must(err)

	// Start the image store.
	images := storage.NewImageService(config.ImagesDir)

	// Set up a webserver.
	server := http.NewServer(
		services.User,
		services.Group,
		services.Post,
		services.Comment,
		services.Follow,
		services.Feed,
		images,
		config.CSRFKey,
		config.IsProd(),
	)

	// Serve the app.
	log.Printf("serving on port %d", config.Port)
	server.Run(config.Port)
}

// must is a little helper for shortening the panic instruction.
func must(err error) {
	if err != nil {
		panic(err)
	}
}
