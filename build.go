//go:build ignore

// build.go - AI Market Analysis build helper
// Usage: go run build.go [-target=TARGET]
// Targets: all, build, test, run, clean

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	binaryName = "ai-market-analysis"
	sourcePath = "./cmd/analysis"
)

var (
	distDir = "dist"

	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorBlue  = "\033[34m"
	colorCyan  = "\033[36m"
)

func main() {
	target := flag.String("target", "all", "Build target")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	printHeader()

	switch *target {
	case "all":
		runTests(*verbose)
		buildBinary(*verbose)
	case "build":
		buildBinary(*verbose)
	case "test":
		runTests(*verbose)
	case "run":
		buildBinary(*verbose)
		runAnalysis(flag.Args())
	case "clean":
		clean()
	default:
		printError(fmt.Sprintf("Unknown target: %s", *target))
		showHelp()
		os.Exit(1)
	}
}

func printHeader() {
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println(colorCyan + "     AI Market Analysis - Build System     " + colorReset)
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println()
}

func printInfo(msg string) {
	fmt.Printf("%s[INFO]%s %s\n", colorBlue, colorReset, msg)
}

func printSuccess(msg string) {
	fmt.Printf("%s[SUCCESS]%s %s\n", colorGreen, colorReset, msg)
}

func printError(msg string) {
	fmt.Printf("%s[ERROR]%s %s\n", colorRed, colorReset, msg)
}

func binaryPath() string {
	name := binaryName
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(distDir, name)
}

func buildBinary(verbose bool) {
	printInfo(fmt.Sprintf("Building %s...", binaryName))

	if err := os.MkdirAll(distDir, 0755); err != nil {
		printError(fmt.Sprintf("Failed to create %s: %v", distDir, err))
		os.Exit(1)
	}

	args := []string{"build", "-ldflags", "-s -w", "-o", binaryPath(), sourcePath}
	if verbose {
		args = append([]string{"build", "-v"}, args[1:]...)
		fmt.Printf("Running: go %s\n", strings.Join(args, " "))
	}

	cmd := exec.Command("go", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Failed to build %s: %v", binaryName, err))
		os.Exit(1)
	}

	if info, err := os.Stat(binaryPath()); err == nil {
		sizeMB := float64(info.Size()) / 1024 / 1024
		printSuccess(fmt.Sprintf("Built %s (%.1f MB)", binaryPath(), sizeMB))
	}
}

func runTests(verbose bool) {
	printInfo("Running Go tests...")

	args := []string{"test", "-race"}
	if verbose {
		args = append(args, "-v")
	}
	args = append(args, "./...")

	cmd := exec.Command("go", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Go tests failed: %v", err))
		os.Exit(1)
	}

	printSuccess("All tests passed")
}

func runAnalysis(args []string) {
	printInfo("Running analysis...")

	cmd := exec.Command(binaryPath(), args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Analysis failed: %v", err))
		os.Exit(1)
	}
}

// clean removes build output and generated results, keeping the input CSV
func clean() {
	printInfo("Cleaning build artifacts and results...")

	if err := os.RemoveAll(distDir); err != nil {
		printError(fmt.Sprintf("Failed to clean %s: %v", distDir, err))
	}

	generated, _ := filepath.Glob(filepath.Join("data", "ai_analysis*"))
	for _, f := range generated {
		if err := os.Remove(f); err != nil {
			printError(fmt.Sprintf("Failed to remove %s: %v", f, err))
		}
	}
	if err := os.RemoveAll("logs"); err != nil {
		printError(fmt.Sprintf("Failed to clean logs: %v", err))
	}

	printSuccess("Build artifacts cleaned")
}

func showHelp() {
	fmt.Println("Usage: go run build.go -target=TARGET [-v] [-- analysis flags]")
	fmt.Println()
	fmt.Println("Targets:")
	fmt.Println("  all    Run tests, then build")
	fmt.Println("  build  Build dist/" + binaryName)
	fmt.Println("  test   Run Go tests with the race detector")
	fmt.Println("  run    Build and run the analysis")
	fmt.Println("  clean  Remove dist/, logs/ and generated results")
}
