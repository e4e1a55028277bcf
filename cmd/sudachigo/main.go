// Command sudachigo is a thin CLI front end over the core analyzer. It
// wires a loaded system dictionary into the fixed rewrite/OOV/path-rewrite
// pipelines and prints tab-separated morphemes to stdout or a file.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/sudachigo/sudachigo/analyzer"
	"github.com/sudachigo/sudachigo/dic"
	"github.com/sudachigo/sudachigo/lattice"
	"github.com/sudachigo/sudachigo/morpheme"
	"github.com/sudachigo/sudachigo/oov"
	"github.com/sudachigo/sudachigo/pathrewrite"
	"github.com/sudachigo/sudachigo/rewrite"
)

func main() {
	mode := flag.String("m", "C", "split mode: A, B, or C")
	allFields := flag.Bool("a", false, "print dictionary_form, reading_form, dictionary_id, synonym_group_ids")
	wakati := flag.Bool("w", false, "print space-delimited surface forms only")
	outPath := flag.String("o", "", "output path (default stdout)")
	flag.String("r", "", "config path (configuration file parsing is a collaborator concern, not core)")
	dictPath := flag.String("l", "", "system dictionary path (required)")
	flag.String("p", "", "resource directory (unused by this thin CLI)")
	flag.Parse()

	if *dictPath == "" {
		log.Fatal("sudachigo: -l system dictionary path is required")
	}

	splitMode, err := parseMode(*mode)
	if err != nil {
		log.Fatalf("sudachigo: %v", err)
	}

	sysDict, err := dic.LoadFile(*dictPath)
	if err != nil {
		log.Fatalf("sudachigo: loading dictionary: %v", err)
	}
	defer sysDict.Close()

	dictSet, err := dic.NewDictionarySet(sysDict)
	if err != nil {
		log.Fatalf("sudachigo: assembling dictionary set: %v", err)
	}

	a := buildAnalyzer(dictSet, splitMode)

	in, closeIn := openInput(flag.Args())
	defer closeIn()
	out, closeOut := openOutput(*outPath)
	defer closeOut()

	w := bufio.NewWriter(out)
	defer w.Flush()

	text, err := io.ReadAll(in)
	if err != nil {
		log.Fatalf("sudachigo: reading input: %v", err)
	}

	lists, err := a.TokenizeSentences(string(text))
	if err != nil {
		fmt.Fprintf(os.Stderr, "sudachigo: %v\n", err)
		os.Exit(1)
	}

	for _, list := range lists {
		writeList(w, dictSet, list, *wakati, *allFields)
	}
}

func parseMode(m string) (lattice.Mode, error) {
	switch strings.ToUpper(m) {
	case "A":
		return lattice.ModeA, nil
	case "B":
		return lattice.ModeB, nil
	case "C":
		return lattice.ModeC, nil
	default:
		return 0, fmt.Errorf("invalid mode %q (want A, B, or C)", m)
	}
}

// buildAnalyzer wires the default fixed pipelines over dictSet. A real
// deployment selects and configures these plugins from a config.Config;
// this CLI always runs the minimal default set so it can tokenize without
// a config file.
func buildAnalyzer(dictSet *dic.DictionarySet, mode lattice.Mode) *analyzer.JapaneseAnalyzer {
	pipeline := rewrite.NewPipeline(
		rewrite.NewDefaultNormalizer(nil),
		&rewrite.ProlongedSoundMark{},
		rewrite.NewIgnoreYomigana(10),
	)
	providers := []oov.Provider{oov.NewSimpleOov(0, 0, 0, 0)}
	inhibit := pathrewrite.NewInhibitConnection(nil)
	pathRW := pathrewrite.NewPipeline(
		pathrewrite.NewJoinNumeric(0, 0, 0, 0),
		pathrewrite.NewJoinKatakanaOov(2, 0, 0, 0, 0),
		inhibit,
	)
	return analyzer.New(dictSet, mode, pipeline, providers, pathRW, inhibit, morpheme.ProjectionSurface)
}

func openInput(args []string) (io.Reader, func()) {
	if len(args) == 0 {
		return os.Stdin, func() {}
	}
	f, err := os.Open(args[0])
	if err != nil {
		log.Fatalf("sudachigo: opening input: %v", err)
	}
	return f, func() { f.Close() }
}

func openOutput(path string) (io.Writer, func()) {
	if path == "" {
		return os.Stdout, func() {}
	}
	f, err := os.Create(path)
	if err != nil {
		log.Fatalf("sudachigo: creating output: %v", err)
	}
	return f, func() { f.Close() }
}

func writeList(w *bufio.Writer, dictSet *dic.DictionarySet, list *morpheme.MorphemeList, wakati, allFields bool) {
	if wakati {
		fmt.Fprintln(w, list.Wakati())
		return
	}
	for i := 0; i < list.Len(); i++ {
		writeMorpheme(w, dictSet, list.At(i), allFields)
	}
	fmt.Fprintln(w, "EOS")
}

// writeMorpheme prints one tab-separated output line: surface, POS,
// normalized_form by default; with allFields,
// also dictionary_form, reading_form, dictionary_id, synonym_group_ids,
// and a "(OOV)" suffix on the surface when the morpheme was synthesized.
func writeMorpheme(w *bufio.Writer, dictSet *dic.DictionarySet, m morpheme.Morpheme, allFields bool) {
	pos := dictSet.POS(m.POSID)
	surface := m.Surface()
	if allFields && m.IsOOV {
		surface += " (OOV)"
	}
	fields := []string{surface, strings.Join(pos[:], ","), m.NormalizedForm()}
	if allFields {
		dictForm := ""
		if info, ok := dictSet.WordInfo(m.DictionaryFormWordID(), dic.SubsetSurface); ok {
			dictForm = info.Surface
		}
		fields = append(fields, dictForm, m.ReadingForm(), fmt.Sprintf("%d", m.DictionaryID()), synonymGroupsJSON(m.SynonymGroupIDs()))
	}
	fmt.Fprintln(w, strings.Join(fields, "\t"))
}

func synonymGroupsJSON(ids []int32) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
