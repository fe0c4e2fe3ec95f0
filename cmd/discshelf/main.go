// Command discshelf catalogs a personal collection of movies on physical media.
package main

func main() {
	Execute()
}
