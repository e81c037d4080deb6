package main

// wip-client sends a single WIP request and prints the response, e.g. to
// resolve coordinates, query an area's weather, or submit a sensor report.

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/U22-2025/WIP-sub001"
	"github.com/U22-2025/WIP-sub001/internal/dispatch"
	"github.com/U22-2025/WIP-sub001/pkg/packet"

	"github.com/alecthomas/kingpin/v2"
)

var (
	argCommand = kingpin.Arg("command", "The command to send (location/query/report).").
			Required().
			Enum("location", "query", "report")

	flgLat = kingpin.Flag("lat", "Latitude, for the location command.").Float64()
	flgLon = kingpin.Flag("lon", "Longitude, for the location command.").Float64()

	flgAreaCode = kingpin.Flag("area-code", "Area code, for query/report commands.").Uint32()
	flgDay      = kingpin.Flag("day", "Day offset 0-7.").Default("0").Uint8()

	flgWeather     = kingpin.Flag("weather", "Request weather_code in the query response.").Bool()
	flgTemperature = kingpin.Flag("temperature", "Request temperature in the query response.").Bool()
	flgPOP         = kingpin.Flag("pop", "Request pop in the query response.").Bool()
	flgAlert       = kingpin.Flag("alert", "Request alert text in the query response.").Bool()
	flgDisaster    = kingpin.Flag("disaster", "Request disaster text in the query response.").Bool()

	flgReportWeatherCode = kingpin.Flag("report-weather-code", "weather_code sensor reading to submit.").Uint16()
	flgReportTempC       = kingpin.Flag("report-temp-c", "Temperature reading in Celsius to submit.").Int16()
	flgReportPOP         = kingpin.Flag("report-pop", "Precipitation percent reading to submit.").Uint8()
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func serverAddr(hostVar, portVar, defaultHost, defaultPort string) string {
	return envOr(hostVar, defaultHost) + ":" + envOr(portVar, defaultPort)
}

func main() {
	kingpin.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cfg := dispatch.DefaultConfig()
	if passphrase := os.Getenv("REPORT_SERVER_PASSPHRASE"); passphrase != "" {
		cfg.AuthEnabled = true
		cfg.AuthPassphrase = passphrase
	}

	switch *argCommand {
	case "location":
		runLocation(ctx, cfg)
	case "query":
		runQuery(ctx, cfg)
	case "report":
		runReport(ctx, cfg)
	}
}

func runLocation(ctx context.Context, cfg dispatch.Config) {
	addr := serverAddr("LOCATION_RESOLVER_HOST", "LOCATION_RESOLVER_PORT", "127.0.0.1", "4109")
	client, err := wip.NewClient(addr, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()

	req, err := wip.NewLocationRequest(*flgLat, *flgLon, packet.Day(*flgDay), 1)
	if err != nil {
		log.Fatal(err)
	}
	resp, err := client.Send(ctx, req)
	if err != nil {
		log.Fatal(err)
	}
	locResp, ok := resp.(*packet.LocationResponse)
	if !ok {
		log.Fatalf("unexpected response type from %s", addr)
	}
	fmt.Printf("area_code=%d\n", locResp.Header.AreaCode)
}

func runQuery(ctx context.Context, cfg dispatch.Config) {
	addr := serverAddr("QUERY_SERVER_HOST", "QUERY_SERVER_PORT", "127.0.0.1", "4111")
	client, err := wip.NewClient(addr, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()

	var opts []packet.QueryOption
	if *flgWeather {
		opts = append(opts, packet.WithWeather())
	}
	if *flgTemperature {
		opts = append(opts, packet.WithTemperature())
	}
	if *flgPOP {
		opts = append(opts, packet.WithPOP())
	}
	if *flgAlert {
		opts = append(opts, packet.WithAlert())
	}
	if *flgDisaster {
		opts = append(opts, packet.WithDisaster())
	}

	req, err := wip.NewQueryRequest(*flgAreaCode, packet.Day(*flgDay), 1, opts...)
	if err != nil {
		log.Fatal(err)
	}
	resp, err := client.Send(ctx, req)
	if err != nil {
		log.Fatal(err)
	}
	queryResp, ok := resp.(*packet.QueryResponse)
	if !ok {
		log.Fatalf("unexpected response type from %s", addr)
	}
	fmt.Printf("weather_code=%s temperature=%s pop=%s alert=%q disaster=%q\n",
		fmtUint16(queryResp.Tail.WeatherCode), fmtInt8(queryResp.Tail.Temperature), fmtUint8(queryResp.Tail.POP),
		queryResp.Alert, queryResp.Disaster)
}

func runReport(ctx context.Context, cfg dispatch.Config) {
	addr := serverAddr("REPORT_SERVER_HOST", "REPORT_SERVER_PORT", "127.0.0.1", "4112")
	client, err := wip.NewClient(addr, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()

	var weatherCode *uint16
	if *flgReportWeatherCode != 0 {
		weatherCode = flgReportWeatherCode
	}
	var tempC *int16
	if *flgReportTempC != 0 {
		tempC = flgReportTempC
	}
	var pop *uint8
	if *flgReportPOP != 0 {
		pop = flgReportPOP
	}

	req, err := wip.NewReportRequest(*flgAreaCode, weatherCode, tempC, pop, "", "")
	if err != nil {
		log.Fatal(err)
	}
	resp, err := client.Send(ctx, req)
	if err != nil {
		log.Fatal(err)
	}
	if _, ok := resp.(*packet.ReportResponse); !ok {
		log.Fatalf("unexpected response type from %s", addr)
	}
	fmt.Println("report accepted")
}

func fmtUint16(v *uint16) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatUint(uint64(*v), 10)
}

func fmtInt8(v *int8) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatInt(int64(*v), 10)
}

func fmtUint8(v *uint8) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatUint(uint64(*v), 10)
}
