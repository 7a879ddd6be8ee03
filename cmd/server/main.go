package main

import "speakup/internal/app/server"

func main() {
	server.Run()
}
