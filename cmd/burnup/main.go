// Command burnup ingests ERANOS burnup reports and prints derived metrics.
package main

func main() {
	Execute()
}
