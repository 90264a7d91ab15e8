// Command chainhash runs the striped-lock variant of the concurrent
// bucketized hash map against a workload file, following spec §6/§8.3's
// CLI surface.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/riftlabs/chainhash"
	"github.com/riftlabs/chainhash/internal/driver"
)

const (
	defaultDataFile   = "output.txt"
	defaultNumBuckets = 64
	defaultNumThreads = 16
)

func main() {
	var (
		dataFile      string
		numBuckets    int
		numThreads    int
		disableResize bool
		speedTest     bool
	)

	flag.StringVar(&dataFile, "f", defaultDataFile, "workload file to read")
	flag.IntVar(&numBuckets, "b", defaultNumBuckets, "initial bucket count")
	flag.IntVar(&numThreads, "t", defaultNumThreads, "number of worker goroutines")
	flag.BoolVar(&disableResize, "r", false, "disable automatic resize")
	flag.BoolVar(&speedTest, "s", false, "speed-test mode: skip metrics bookkeeping")
	flag.CommandLine.Init(os.Args[0], flag.ContinueOnError)
	if err := flag.CommandLine.Parse(os.Args[1:]); err != nil {
		os.Exit(1)
	}

	if numBuckets < 1 {
		fmt.Println("start buckets must be > 0, setting to default")
		numBuckets = defaultNumBuckets
	}
	if numThreads < 1 {
		fmt.Println("number of threads must be > 1, setting to default")
		numThreads = defaultNumThreads
	}

	f, err := os.Open(dataFile)
	if err != nil {
		fmt.Println("File not found")
		os.Exit(1)
	}
	defer f.Close()

	tbl := chainhash.New(chainhash.Config{
		Variant:        chainhash.Striped,
		NumBuckets:     uint64(numBuckets),
		ResizeEnabled:  !disableResize,
		MetricsEnabled: !speedTest,
	})
	defer tbl.Destroy()

	start := time.Now()
	if err := driver.Run(context.Background(), tbl, f, numThreads, speedTest); err != nil {
		log.Fatalf("driver: %v", err)
	}
	elapsed := time.Since(start)

	fmt.Printf("execution time: %f seconds\n", elapsed.Seconds())
	if !speedTest {
		driver.FormatReport(os.Stdout, tbl.Snapshot())
	}
}
