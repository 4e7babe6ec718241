package main

import "github.com/RyanBlaney/voice-biomarker/cmd"

func main() {
	cmd.Execute()
}
