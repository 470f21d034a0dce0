// Command msproc runs the mass-spectrometry processing service: peak
// detection, cross-sample feature alignment, differential statistics,
// and the auxiliary filtering, normalization, and identification steps
// behind a single HTTP entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/banshee-data/metabolite.report/internal/api"
	"github.com/banshee-data/metabolite.report/internal/ms"
	"github.com/banshee-data/metabolite.report/internal/ms/pipeline"
	"github.com/banshee-data/metabolite.report/internal/version"
)

var (
	listen   = flag.String("listen", ":8001", "Listen address")
	degraded = flag.Bool("degraded", false, "Force the degraded peak-detection path")
)

func main() {
	flag.Parse()

	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	opts := ms.DefaultPickerOptions()
	opts.ForceDegraded = *degraded
	processor := pipeline.NewProcessor(ms.NewPicker(opts))

	server := api.NewServer(processor)
	handler := api.LoggingMiddleware(api.CORSMiddleware(server.ServeMux()))

	srv := &http.Server{
		Addr:    *listen,
		Handler: handler,
	}

	go func() {
		log.Printf("ms-processing %s (%s path) listening on %s",
			version.Version, processor.AlgorithmPath(), *listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
