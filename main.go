// Command sra2mito assembles mitochondrial genomes from sequencing reads.
package main

import "sra2mito/internal/cli"

func main() {
	cli.Execute()
}
