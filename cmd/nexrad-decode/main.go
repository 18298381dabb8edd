package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"sort"

	"github.com/cheggaaa/pb/v3"
	"github.com/fatih/color"
	"github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"

	"github.com/jddeal/go-wsr88d/archive2"
	"github.com/jddeal/go-wsr88d/level3"
	"github.com/jddeal/go-wsr88d/wire"
)

var cli struct {
	Args struct {
		Filename string
	} `positional-args:"yes" required:"yes"`
	LogLevel         string `short:"l" long:"log-level" description:"logging level" choice:"error" choice:"warn" choice:"info" choice:"debug" choice:"trace" default:"info"`
	ShowVolumeHeader bool   `long:"show-volume-header" description:"dumps out the contents of the Volume Header"`
	Progress         bool   `long:"progress" description:"show a progress bar while reading the file"`
	CPUProfile       string `long:"cpu-profile" description:"write a CPU profile to this file, inspect with go tool pprof"`
}

// archive2Magic starts the tape filename of every Archive II volume header
const archive2Magic = "AR2V"

func main() {

	// parse the input args
	_, err := flags.Parse(&cli)
	if err != nil {
		os.Exit(1)
	}

	// set the logging level
	errorLevels := map[string]logrus.Level{
		"error": logrus.ErrorLevel,
		"warn":  logrus.WarnLevel,
		"info":  logrus.InfoLevel,
		"debug": logrus.DebugLevel,
		"trace": logrus.TraceLevel,
	}
	log := logrus.New()
	log.SetLevel(errorLevels[cli.LogLevel])

	if cli.CPUProfile != "" {
		f, err := os.Create(cli.CPUProfile)
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	if err := decode(cli.Args.Filename, log); err != nil {
		log.WithField("kind", wire.Classify(err)).Error(err)
		pprof.StopCPUProfile()
		os.Exit(2)
	}
}

func decode(filename string, log *logrus.Logger) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	var reader io.Reader = f
	if cli.Progress {
		stat, err := f.Stat()
		if err != nil {
			return err
		}
		bar := pb.New64(stat.Size()).SetTemplate(pb.Full).SetWriter(os.Stderr).Start()
		defer bar.Finish()
		reader = bar.NewProxyReader(f)
	}

	// decode it
	log.Info(color.CyanString("decoding %s", filename))
	buffered := bufio.NewReader(reader)
	magic, _ := buffered.Peek(len(archive2Magic))
	if string(magic) == archive2Magic {
		ar2, err := archive2.NewArchive2(buffered, log)
		if err != nil {
			return err
		}
		printArchive2(ar2)
		return nil
	}

	l3, err := level3.NewFile(buffered, log)
	if err != nil {
		return err
	}
	printLevel3(l3)
	return nil
}

func printArchive2(ar2 *archive2.Archive2) {
	if cli.ShowVolumeHeader {
		fmt.Printf("%+v\n", ar2.VolumeHeader)
	}

	fmt.Printf("%s %s (build %.2f)\n",
		color.CyanString("%s", ar2.VolumeHeader.Filename()),
		ar2.VolumeHeader.Date().Format("2006-01-02 15:04:05 MST"),
		ar2.Build())

	if vcp := ar2.VolumeCoveragePattern; vcp != nil {
		fmt.Println(vcp)
	}
	if cfm := ar2.ClutterFilterMap; cfm != nil {
		fmt.Println(cfm)
	}

	types := make([]int, 0, len(ar2.MessageCounts))
	for t := range ar2.MessageCounts {
		types = append(types, int(t))
	}
	sort.Ints(types)
	for _, t := range types {
		fmt.Printf("  type %02d: %s messages\n", t, color.CyanString("%d", ar2.MessageCounts[uint8(t)]))
	}

	elevations := make([]int, 0, len(ar2.ElevationScans))
	for elv := range ar2.ElevationScans {
		elevations = append(elevations, elv)
	}
	sort.Ints(elevations)
	for _, elv := range elevations {
		radials := ar2.ElevationScans[elv]
		fmt.Printf("  elevation %2d: %.2f° %s radials\n",
			elv, radials[0].Header.ElevationAngle, color.CyanString("%d", len(radials)))
	}
}

func printLevel3(f *level3.File) {
	if f.WMOHeader != nil {
		fmt.Println(color.CyanString("%s", f.WMOHeader.String()))
	}

	m := f.Message
	fmt.Printf("product %s generated %s\n",
		color.CyanString("%d", m.Description.ProductCode),
		m.Description.GeneratedAt().Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("  radar %.3f, %.3f VCP %d\n",
		m.Description.LatitudeDegrees(), m.Description.LongitudeDegrees(), m.Description.VolumeCoveragePattern)

	if m.Symbology != nil {
		for i := 0; i < m.Symbology.NumberOfLayers(); i++ {
			counts := map[uint16]int{}
			for _, p := range m.Symbology.Layer(i) {
				counts[p.PacketCode()]++
			}
			fmt.Printf("  layer %d:", i+1)
			for code, n := range counts {
				fmt.Printf(" 0x%04X×%s", code, color.CyanString("%d", n))
			}
			fmt.Println()
		}
	}
	if m.Graphic != nil {
		fmt.Printf("  %d graphic pages\n", len(m.Graphic.Pages()))
	}
	if m.Tabular != nil {
		for _, page := range m.Tabular.Pages() {
			for _, line := range page {
				fmt.Println("  " + line)
			}
		}
	}
}
