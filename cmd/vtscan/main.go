package main

// vtscan checks files against VirusTotal from the command line.
func main() {
	Execute()
}
