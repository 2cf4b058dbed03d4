package main

import (
	"log"
	"os"

	"github.com/arcnetwork/arc-processing/api"
	"github.com/arcnetwork/arc-processing/backend"
	"github.com/arcnetwork/arc-processing/bridge"
	"github.com/arcnetwork/arc-processing/browser"
	"github.com/arcnetwork/arc-processing/coordinator"
	"github.com/arcnetwork/arc-processing/events"
	"github.com/arcnetwork/arc-processing/session"
	"github.com/arcnetwork/arc-processing/settings"
	"github.com/arcnetwork/arc-processing/storage"
)

func main() {
	settings.ReadSettingsAndRun(func(s settings.Settings) {
		log.Printf("Using config file %s", s.ConfigFileUsed())

		db := storage.Open(s)

		kvStore := storage.NewKVStore(db)
		eventStorage := events.NewEventStorage(db)
		eventBroker := events.NewEventBroker(s, eventStorage)

		extensionBrowser := browser.NewMemoryBrowser()
		paymentCoordinator := coordinator.NewCoordinator(
			s, extensionBrowser, kvStore, eventBroker,
		)

		apiServer := api.NewServer(
			s.GetString("api.http.address"), paymentCoordinator, eventBroker,
		)

		backendClient := backend.NewClient(s.GetURL("backend.url"))
		camera := session.NewFileCamera(s.GetString("camera.frame.path"))
		sessionController := session.NewController(
			s, backendClient, camera, paymentCoordinator, kvStore,
		)
		sessionRunner := session.NewRunner(sessionController, eventBroker)

		components := &componentGroup{}

		components.run("Event broker", eventBroker)
		components.run("Payment coordinator", paymentCoordinator)
		components.run("API server", apiServer)
		components.run("Payment session runner", sessionRunner)

		// An in-process merchant page is attended by a bridge. External
		// merchant pages use the HTTP API instead and need no bridge
		if merchantPageURL := s.GetString("merchant.page.url"); merchantPageURL != "" {
			merchantTab, err := extensionBrowser.CreateTab(merchantPageURL, false)
			if err != nil {
				log.Fatalf("Error: could not open merchant page tab: %v", err)
			}
			merchantBridge, err := bridge.NewBridge(
				extensionBrowser, paymentCoordinator, merchantTab.ID,
			)
			if err != nil {
				log.Fatalf("Error: could not attach merchant bridge: %v", err)
			}
			components.run("Merchant bridge", merchantBridge)
		}

		if components.wait() {
			os.Exit(1)
		}
	})
}
