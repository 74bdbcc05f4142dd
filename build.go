//go:build ignore

// build.go - Airline KPI Build System
// Usage: go run build.go [-target=TARGET]
// Targets: all, exporter, dashboard, clean, test, release

package main

import (
	"crypto/sha256"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const module = "airlinekpi"

// BuildContext holds configuration for the build process
type BuildContext struct {
	Verbose bool
	Release bool
	GOOS    string
	GOARCH  string
}

var (
	rootDir string
	distDir string

	// key = source dir name under cmd/, value = output binary name
	executables = map[string]string{
		"exporter":  "kpi-exporter",
		"dashboard": "kpi-dashboard",
	}

	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
)

func init() {
	cwd, err := os.Getwd()
	if err != nil {
		panic(fmt.Sprintf("Failed to get current directory: %v", err))
	}
	rootDir = cwd
	distDir = filepath.Join(rootDir, "dist")

	if _, err := os.Stat(filepath.Join(rootDir, "go.mod")); os.IsNotExist(err) {
		panic(fmt.Sprintf("go.mod not found in %s. Run the build from the module root.", rootDir))
	}
}

func main() {
	target := flag.String("target", "all", "Build target")
	verbose := flag.Bool("v", false, "Verbose output")
	goos := flag.String("os", runtime.GOOS, "Target operating system")
	goarch := flag.String("arch", runtime.GOARCH, "Target architecture")
	flag.Parse()

	printHeader()
	startTime := time.Now()

	ctx := &BuildContext{
		Verbose: *verbose,
		GOOS:    *goos,
		GOARCH:  *goarch,
	}

	switch *target {
	case "all":
		buildAll(ctx)
	case "exporter", "dashboard":
		prepareDirectories(ctx.Verbose)
		buildExecutable(*target, ctx)
	case "clean":
		clean(ctx.Verbose)
	case "test":
		runTests(ctx.Verbose)
	case "release":
		ctx.Release = true
		buildRelease(ctx)
	default:
		showHelp()
		os.Exit(1)
	}

	printSuccess(fmt.Sprintf("Build completed in %s", time.Since(startTime).Round(time.Millisecond)))
}

func printHeader() {
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println(colorCyan + "     Airline KPI - Build System            " + colorReset)
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

func printWarning(msg string) {
	fmt.Printf("%s[WARNING]%s %s\n", colorYellow, colorReset, msg)
}

// Build all executables
func buildAll(ctx *BuildContext) {
	printInfo("Building all components...")

	if err := checkPrerequisites(); err != nil {
		printError(fmt.Sprintf("Prerequisites check failed: %v", err))
		os.Exit(1)
	}

	prepareDirectories(ctx.Verbose)

	for name := range executables {
		buildExecutable(name, ctx)
	}

	copyConfigFiles(ctx.Verbose)

	printSuccess("All components built successfully!")
}

// ldflags stamps the build time and ID into the app package
func ldflags(ctx *BuildContext) string {
	now := time.Now()
	sum := sha256.Sum256([]byte(now.Format(time.RFC3339Nano)))
	flags := fmt.Sprintf("-X %s/internal/app.BuildTime=%s -X %s/internal/app.BuildID=%x",
		module, now.Format(time.RFC3339), module, sum[:6])
	if ctx.Release {
		flags = "-s -w " + flags
	}
	return flags
}

func buildExecutable(name string, ctx *BuildContext) {
	binName, ok := executables[name]
	if !ok {
		printError(fmt.Sprintf("Unknown executable: %s", name))
		os.Exit(1)
	}
	if ctx.GOOS == "windows" {
		binName += ".exe"
	}

	printInfo(fmt.Sprintf("Building %s (%s/%s)...", name, ctx.GOOS, ctx.GOARCH))

	outputPath := filepath.Join(distDir, binName)
	args := []string{"build"}
	if ctx.Verbose {
		args = append(args, "-v")
	}
	if ctx.Release {
		args = append(args, "-trimpath")
	}
	args = append(args, "-ldflags", ldflags(ctx), "-o", outputPath, "./cmd/"+name)

	cmd := exec.Command("go", args...)
	cmd.Dir = rootDir
	// modernc sqlite and the mysql driver are pure Go
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0", "GOOS="+ctx.GOOS, "GOARCH="+ctx.GOARCH)

	if ctx.Verbose {
		fmt.Printf("Running: go %s\n", strings.Join(args, " "))
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Failed to build %s: %v", name, err))
		os.Exit(1)
	}

	if info, err := os.Stat(outputPath); err == nil {
		sizeMB := float64(info.Size()) / 1024 / 1024
		printSuccess(fmt.Sprintf("Built %s (%.1f MB)", binName, sizeMB))
	}
}

func clean(verbose bool) {
	printInfo("Cleaning build artifacts...")

	if err := os.RemoveAll(distDir); err != nil {
		printError(fmt.Sprintf("Failed to clean dist directory: %v", err))
		return
	}
	if verbose {
		fmt.Printf("Removed %s\n", distDir)
	}

	printSuccess("Build artifacts cleaned")
}

func runTests(verbose bool) {
	printInfo("Running Go tests...")

	args := []string{"test", "-race"}
	if verbose {
		args = append(args, "-v")
	}
	args = append(args, "./...")

	cmd := exec.Command("go", args...)
	cmd.Dir = rootDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Go tests failed: %v", err))
		os.Exit(1)
	}

	printSuccess("All tests passed")
}

// Build release version with optimizations
func buildRelease(ctx *BuildContext) {
	printInfo("Building release version...")

	runTests(ctx.Verbose)
	clean(ctx.Verbose)
	buildAll(ctx)

	printSuccess(fmt.Sprintf("Release built in %s", distDir))
}

func checkPrerequisites() error {
	if err := exec.Command("go", "version").Run(); err != nil {
		return fmt.Errorf("go is not installed or not in PATH")
	}
	return nil
}

func prepareDirectories(verbose bool) {
	if err := os.MkdirAll(distDir, 0755); err != nil {
		printError(fmt.Sprintf("Failed to create %s: %v", distDir, err))
		os.Exit(1)
	}
	if verbose {
		fmt.Printf("Output directory: %s\n", distDir)
	}
}

// copyConfigFiles ships an example config next to the binaries when one exists
func copyConfigFiles(verbose bool) {
	src := filepath.Join(rootDir, "config.example.yaml")
	data, err := os.ReadFile(src)
	if os.IsNotExist(err) {
		if verbose {
			printWarning("No config.example.yaml found, skipping")
		}
		return
	}
	if err != nil {
		printWarning(fmt.Sprintf("Failed to read %s: %v", src, err))
		return
	}
	if err := os.WriteFile(filepath.Join(distDir, "config.example.yaml"), data, 0644); err != nil {
		printWarning(fmt.Sprintf("Failed to copy config: %v", err))
	}
}

func showHelp() {
	fmt.Println("Usage: go run build.go [-target=TARGET] [-v] [-os=GOOS] [-arch=GOARCH]")
	fmt.Println()
	fmt.Println("Targets:")
	fmt.Println("  all        Build the exporter and the dashboard (default)")
	fmt.Println("  exporter   Build only the Parquet exporter")
	fmt.Println("  dashboard  Build only the dashboard server")
	fmt.Println("  clean      Remove the dist directory")
	fmt.Println("  test       Run all Go tests with the race detector")
	fmt.Println("  release    Test, clean and build stripped binaries")
}
