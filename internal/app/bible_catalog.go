package app

import "strconv"

// Testament selects one of the two halves of the canon.
type Testament string

const (
	TestamentOld Testament = "old"
	TestamentNew Testament = "new"
)

// ArabicName returns the display label of the testament.
func (t Testament) ArabicName() string {
	if t == TestamentNew {
		return "العهد الجديد"
	}
	return "العهد القديم"
}

// BibleBook is one canonical book. ID is a stable slug used for
// persistence keys and manuscript lookups; Name is the Arabic
// Van Dyck title shown in the UI.
type BibleBook struct {
	ID        string
	Name      string
	Group     string
	Testament Testament
	Chapters  int
}

// Book groups in canonical order, per testament.
var (
	OldTestamentGroups = []string{"أسفار الشريعة", "الأسفار التاريخية", "أسفار الشعر والحكمة", "الأنبياء الكبار", "الأنبياء الصغار"}
	NewTestamentGroups = []string{"الأناجيل", "سفر الأعمال", "رسائل بولس الرسول", "الرسائل الجامعة", "سفر الرؤيا"}
)

// Books lists the 66 canonical books in order.
var Books = []BibleBook{
	{ID: "genesis", Name: "التكوين", Group: "أسفار الشريعة", Testament: TestamentOld, Chapters: 50},
	{ID: "exodus", Name: "الخروج", Group: "أسفار الشريعة", Testament: TestamentOld, Chapters: 40},
	{ID: "leviticus", Name: "اللاويين", Group: "أسفار الشريعة", Testament: TestamentOld, Chapters: 27},
	{ID: "numbers", Name: "العدد", Group: "أسفار الشريعة", Testament: TestamentOld, Chapters: 36},
	{ID: "deuteronomy", Name: "التثنية", Group: "أسفار الشريعة", Testament: TestamentOld, Chapters: 34},
	{ID: "joshua", Name: "يشوع", Group: "الأسفار التاريخية", Testament: TestamentOld, Chapters: 24},
	{ID: "judges", Name: "القضاة", Group: "الأسفار التاريخية", Testament: TestamentOld, Chapters: 21},
	{ID: "ruth", Name: "راعوث", Group: "الأسفار التاريخية", Testament: TestamentOld, Chapters: 4},
	{ID: "1samuel", Name: "صموئيل الأول", Group: "الأسفار التاريخية", Testament: TestamentOld, Chapters: 31},
	{ID: "2samuel", Name: "صموئيل الثاني", Group: "الأسفار التاريخية", Testament: TestamentOld, Chapters: 24},
	{ID: "1kings", Name: "الملوك الأول", Group: "الأسفار التاريخية", Testament: TestamentOld, Chapters: 22},
	{ID: "2kings", Name: "الملوك الثاني", Group: "الأسفار التاريخية", Testament: TestamentOld, Chapters: 25},
	{ID: "1chronicles", Name: "أخبار الأيام الأول", Group: "الأسفار التاريخية", Testament: TestamentOld, Chapters: 29},
	{ID: "2chronicles", Name: "أخبار الأيام الثاني", Group: "الأسفار التاريخية", Testament: TestamentOld, Chapters: 36},
	{ID: "ezra", Name: "عزرا", Group: "الأسفار التاريخية", Testament: TestamentOld, Chapters: 10},
	{ID: "nehemiah", Name: "نحميا", Group: "الأسفار التاريخية", Testament: TestamentOld, Chapters: 13},
	{ID: "esther", Name: "أستير", Group: "الأسفار التاريخية", Testament: TestamentOld, Chapters: 10},
	{ID: "job", Name: "أيوب", Group: "أسفار الشعر والحكمة", Testament: TestamentOld, Chapters: 42},
	{ID: "psalms", Name: "المزامير", Group: "أسفار الشعر والحكمة", Testament: TestamentOld, Chapters: 150},
	{ID: "proverbs", Name: "الأمثال", Group: "أسفار الشعر والحكمة", Testament: TestamentOld, Chapters: 31},
	{ID: "ecclesiastes", Name: "الجامعة", Group: "أسفار الشعر والحكمة", Testament: TestamentOld, Chapters: 12},
	{ID: "songofsolomon", Name: "نشيد الأنشاد", Group: "أسفار الشعر والحكمة", Testament: TestamentOld, Chapters: 8},
	{ID: "isaiah", Name: "إشعياء", Group: "الأنبياء الكبار", Testament: TestamentOld, Chapters: 66},
	{ID: "jeremiah", Name: "إرميا", Group: "الأنبياء الكبار", Testament: TestamentOld, Chapters: 52},
	{ID: "lamentations", Name: "مراثي إرميا", Group: "الأنبياء الكبار", Testament: TestamentOld, Chapters: 5},
	{ID: "ezekiel", Name: "حزقيال", Group: "الأنبياء الكبار", Testament: TestamentOld, Chapters: 48},
	{ID: "daniel", Name: "دانيال", Group: "الأنبياء الكبار", Testament: TestamentOld, Chapters: 12},
	{ID: "hosea", Name: "هوشع", Group: "الأنبياء الصغار", Testament: TestamentOld, Chapters: 14},
	{ID: "joel", Name: "يوئيل", Group: "الأنبياء الصغار", Testament: TestamentOld, Chapters: 3},
	{ID: "amos", Name: "عاموس", Group: "الأنبياء الصغار", Testament: TestamentOld, Chapters: 9},
	{ID: "obadiah", Name: "عوبديا", Group: "الأنبياء الصغار", Testament: TestamentOld, Chapters: 1},
	{ID: "jonah", Name: "يونان", Group: "الأنبياء الصغار", Testament: TestamentOld, Chapters: 4},
	{ID: "micah", Name: "ميخا", Group: "الأنبياء الصغار", Testament: TestamentOld, Chapters: 7},
	{ID: "nahum", Name: "ناحوم", Group: "الأنبياء الصغار", Testament: TestamentOld, Chapters: 3},
	{ID: "habakkuk", Name: "حبقوق", Group: "الأنبياء الصغار", Testament: TestamentOld, Chapters: 3},
	{ID: "zephaniah", Name: "صفنيا", Group: "الأنبياء الصغار", Testament: TestamentOld, Chapters: 3},
	{ID: "haggai", Name: "حجي", Group: "الأنبياء الصغار", Testament: TestamentOld, Chapters: 2},
	{ID: "zechariah", Name: "زكريا", Group: "الأنبياء الصغار", Testament: TestamentOld, Chapters: 14},
	{ID: "malachi", Name: "ملاخي", Group: "الأنبياء الصغار", Testament: TestamentOld, Chapters: 4},
	{ID: "matthew", Name: "متى", Group: "الأناجيل", Testament: TestamentNew, Chapters: 28},
	{ID: "mark", Name: "مرقس", Group: "الأناجيل", Testament: TestamentNew, Chapters: 16},
	{ID: "luke", Name: "لوقا", Group: "الأناجيل", Testament: TestamentNew, Chapters: 24},
	{ID: "john", Name: "يوحنا", Group: "الأناجيل", Testament: TestamentNew, Chapters: 21},
	{ID: "acts", Name: "أعمال الرسل", Group: "سفر الأعمال", Testament: TestamentNew, Chapters: 28},
	{ID: "romans", Name: "رومية", Group: "رسائل بولس الرسول", Testament: TestamentNew, Chapters: 16},
	{ID: "1corinthians", Name: "كورنثوس الأولى", Group: "رسائل بولس الرسول", Testament: TestamentNew, Chapters: 16},
	{ID: "2corinthians", Name: "كورنثوس الثانية", Group: "رسائل بولس الرسول", Testament: TestamentNew, Chapters: 13},
	{ID: "galatians", Name: "غلاطية", Group: "رسائل بولس الرسول", Testament: TestamentNew, Chapters: 6},
	{ID: "ephesians", Name: "أفسس", Group: "رسائل بولس الرسول", Testament: TestamentNew, Chapters: 6},
	{ID: "philippians", Name: "فيلبي", Group: "رسائل بولس الرسول", Testament: TestamentNew, Chapters: 4},
	{ID: "colossians", Name: "كولوسي", Group: "رسائل بولس الرسول", Testament: TestamentNew, Chapters: 4},
	{ID: "1thessalonians", Name: "تسالونيكي الأولى", Group: "رسائل بولس الرسول", Testament: TestamentNew, Chapters: 5},
	{ID: "2thessalonians", Name: "تسالونيكي الثانية", Group: "رسائل بولس الرسول", Testament: TestamentNew, Chapters: 3},
	{ID: "1timothy", Name: "تيموثاوس الأولى", Group: "رسائل بولس الرسول", Testament: TestamentNew, Chapters: 6},
	{ID: "2timothy", Name: "تيموثاوس الثانية", Group: "رسائل بولس الرسول", Testament: TestamentNew, Chapters: 4},
	{ID: "titus", Name: "تيطس", Group: "رسائل بولس الرسول", Testament: TestamentNew, Chapters: 3},
	{ID: "philemon", Name: "فليمون", Group: "رسائل بولس الرسول", Testament: TestamentNew, Chapters: 1},
	{ID: "hebrews", Name: "العبرانيين", Group: "رسائل بولس الرسول", Testament: TestamentNew, Chapters: 13},
	{ID: "james", Name: "يعقوب", Group: "الرسائل الجامعة", Testament: TestamentNew, Chapters: 5},
	{ID: "1peter", Name: "بطرس الأولى", Group: "الرسائل الجامعة", Testament: TestamentNew, Chapters: 5},
	{ID: "2peter", Name: "بطرس الثانية", Group: "الرسائل الجامعة", Testament: TestamentNew, Chapters: 3},
	{ID: "1john", Name: "يوحنا الأولى", Group: "الرسائل الجامعة", Testament: TestamentNew, Chapters: 5},
	{ID: "2john", Name: "يوحنا الثانية", Group: "الرسائل الجامعة", Testament: TestamentNew, Chapters: 1},
	{ID: "3john", Name: "يوحنا الثالثة", Group: "الرسائل الجامعة", Testament: TestamentNew, Chapters: 1},
	{ID: "jude", Name: "يهوذا", Group: "الرسائل الجامعة", Testament: TestamentNew, Chapters: 1},
	{ID: "revelation", Name: "رؤيا يوحنا", Group: "سفر الرؤيا", Testament: TestamentNew, Chapters: 22},
}

// manuscriptLinks maps "<bookID>-<chapter>" to a digitized manuscript
// image for the handful of chapters we have scans for.
var manuscriptLinks = map[string]string{
	"john-1":    "https://www.codexsinaiticus.org/en/manuscript.aspx?book=36&chapter=1",
	"mark-1":    "https://www.codexsinaiticus.org/en/manuscript.aspx?book=34&chapter=1",
	"genesis-1": "https://www.codexsinaiticus.org/en/manuscript.aspx?book=1&chapter=1",
}

// BookByID looks up a book by its slug.
func BookByID(id string) (BibleBook, bool) {
	for _, b := range Books {
		if b.ID == id {
			return b, true
		}
	}
	return BibleBook{}, false
}

// BooksByTestament returns the books of one testament in canonical order.
func BooksByTestament(t Testament) []BibleBook {
	var out []BibleBook
	for _, b := range Books {
		if b.Testament == t {
			out = append(out, b)
		}
	}
	return out
}

// ManuscriptLink returns a manuscript scan URL for the chapter, if known.
func ManuscriptLink(bookID string, chapter int) (string, bool) {
	link, ok := manuscriptLinks[bookID+"-"+strconv.Itoa(chapter)]
	return link, ok
}
