package snapfile

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/t2a/ccam/internal/model"
)

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	codes := []*model.Code{
		{Code: "HHFA001", Label: "Appendicectomie", Description: "Par cœlioscopie", ICR: 104, Chapter: "07", ChapterTitle: "Système digestif"},
		{Code: "ZZQX001", Label: "Acte retiré", Retired: true, Chapter: "19"},
	}
	official := []model.Pair{{A: "HHFA001", B: "ZZLP001"}}
	incompatible := []model.Pair{{A: "HHFA001", B: "HHFA002"}}
	frequency := []model.FrequencyPair{{A: "HHFA001", B: "ZZLP001", Support: 12}}

	if err := Write(dir, codes, official, incompatible, frequency); err != nil {
		t.Fatalf("Write: %v", err)
	}

	gotCodes, err := ReadCodes(dir)
	if err != nil {
		t.Fatalf("ReadCodes: %v", err)
	}
	if len(gotCodes) != 2 {
		t.Fatalf("ReadCodes returned %d rows, want 2", len(gotCodes))
	}
	if !reflect.DeepEqual(gotCodes[0], *codes[0]) {
		t.Errorf("code row changed across the round trip:\n got %+v\nwant %+v", gotCodes[0], *codes[0])
	}
	if !gotCodes[1].Retired {
		t.Error("retired flag lost")
	}

	gotOff, gotInc, gotFreq, dropped, err := ReadAssociations(dir)
	if err != nil {
		t.Fatalf("ReadAssociations: %v", err)
	}
	if dropped != 0 {
		t.Errorf("dropped = %d, want 0", dropped)
	}
	if !reflect.DeepEqual(gotOff, official) || !reflect.DeepEqual(gotInc, incompatible) {
		t.Errorf("pairs changed: official %v incompatible %v", gotOff, gotInc)
	}
	if !reflect.DeepEqual(gotFreq, frequency) {
		t.Errorf("frequency pairs changed: %v", gotFreq)
	}
}

func TestReadAssociations_UnknownKindDropped(t *testing.T) {
	dir := t.TempDir()
	rows := []AssociationRow{
		{Kind: KindOfficial, Code: "HHFA001", AssociatedCode: "ZZLP001"},
		{Kind: "forbidden", Code: "HHFA001", AssociatedCode: "HHFA002"},
	}
	if err := writeAll(filepath.Join(dir, AssociationsFile), rows); err != nil {
		t.Fatalf("writeAll: %v", err)
	}

	official, _, _, dropped, err := ReadAssociations(dir)
	if err != nil {
		t.Fatalf("ReadAssociations: %v", err)
	}
	if len(official) != 1 || dropped != 1 {
		t.Errorf("official = %d dropped = %d, want 1 and 1", len(official), dropped)
	}
}

func TestReadCodes_MissingFile(t *testing.T) {
	if _, err := ReadCodes(t.TempDir()); err == nil {
		t.Error("missing codes file accepted")
	}
}
