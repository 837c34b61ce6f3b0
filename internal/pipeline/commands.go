package pipeline

import (
	"path/filepath"
	"strconv"
	"strings"

	"sra2mito/internal/config"
	"sra2mito/internal/tool"
)

// toolLabel is the name a tool goes by in log lines.
func toolLabel(bin string) string {
	name := filepath.Base(bin)
	if strings.HasPrefix(name, "spades") {
		return "SPAdes"
	}
	return name
}

func downloadCommand(cfg *config.Config, accession string, l Layout, threads int) tool.Command {
	args := []string{
		"-a", accession,
		"--prefix", l.Sample,
		"--outdir", l.Dir,
		"--cpus", strconv.Itoa(threads),
	}
	if cfg.Download.Force {
		args = append(args, "--force")
	}
	return tool.Command{Name: cfg.Tools.Downloader, Args: args}
}

func trimCommand(cfg *config.Config, in Pair, l Layout, threads int) tool.Command {
	out := l.Trimmed()
	return tool.Command{Name: cfg.Tools.Trimmer, Args: []string{
		"--in1", in.R1,
		"--in2", in.R2,
		"--out1", out.R1,
		"--out2", out.R2,
		"--thread", strconv.Itoa(threads),
		"-j", l.QCJSON(),
		"-h", l.QCHTML(),
	}}
}

// sampleCommand draws reads from one mate file. The sampler writes plain
// FASTQ on stdout; the caller compresses it.
func sampleCommand(cfg *config.Config, in string) tool.Command {
	return tool.Command{Name: cfg.Tools.Sampler, Args: []string{
		"sample",
		"-s" + strconv.Itoa(cfg.Sampling.Seed),
		in,
		strconv.Itoa(cfg.Sampling.Reads),
	}}
}

func assembleCommand(cfg *config.Config, in Pair, l Layout, threads int) tool.Command {
	var args []string
	if cfg.Assembly.OnlyAssembler {
		args = append(args, "--only-assembler")
	}
	args = append(args,
		"-1", in.R1,
		"-2", in.R2,
		"-o", l.AssemblyDir(),
		"-t", strconv.Itoa(threads),
		"-k", cfg.Assembly.KmerList(),
	)
	if cfg.Assembly.GFA11 {
		args = append(args, "--gfa11")
	}
	return tool.Command{Name: cfg.Tools.Assembler, Args: args}
}
