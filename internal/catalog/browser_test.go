package catalog

import "testing"

func browserCatalog() []Song {
	return []Song{
		{Name: "Yurak", Category: "Pop"},
		{Name: "Bahor", Category: "Klassika"},
		{Name: "Tun", Category: "Pop"},
		{Name: "Yurak", Category: "Rok", Text: "duplicate"},
	}
}

func TestCategoriesFirstSeenOrder(t *testing.T) {
	cats := Categories(browserCatalog())
	want := []string{"Pop", "Klassika", "Rok"}
	if len(cats) != len(want) {
		t.Fatalf("got %v, want %v", cats, want)
	}
	for i := range want {
		if cats[i] != want[i] {
			t.Fatalf("category %d = %s, want %s", i, cats[i], want[i])
		}
	}
}

func TestCategoriesEmptyCatalog(t *testing.T) {
	if cats := Categories(nil); len(cats) != 0 {
		t.Fatalf("expected no categories, got %v", cats)
	}
}

func TestInCategoryExactMatch(t *testing.T) {
	songs := InCategory(browserCatalog(), "Pop")
	if len(songs) != 2 {
		t.Fatalf("expected 2 pop songs, got %d", len(songs))
	}
	if songs[0].Name != "Yurak" || songs[1].Name != "Tun" {
		t.Fatalf("wrong order: %s, %s", songs[0].Name, songs[1].Name)
	}

	// case-sensitive: "pop" is a different category
	if got := InCategory(browserCatalog(), "pop"); len(got) != 0 {
		t.Fatalf("match must be case-sensitive, got %d songs", len(got))
	}
	if got := InCategory(browserCatalog(), "Jazz"); len(got) != 0 {
		t.Fatalf("unknown category must be empty, got %d songs", len(got))
	}
}

func TestFindByNameFirstMatchWins(t *testing.T) {
	song, ok := FindByName(browserCatalog(), "Yurak")
	if !ok {
		t.Fatal("expected a match")
	}
	if song.Category != "Pop" || song.Text != "" {
		t.Fatalf("expected the first record, got %+v", song)
	}

	if _, ok := FindByName(browserCatalog(), "Nadir"); ok {
		t.Fatal("unexpected match for unknown name")
	}
}
