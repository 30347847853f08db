package app

// User-facing texts, kept verbatim from the production bot.
const (
	msgGreeting      = "🎵 Salom! Kategoriyani tanlang:"
	msgNoPermission  = "❌ Sizda bunday buyruqni bajarish huquqi yo'q."
	msgPromptAudio   = "🎵 Yangi qo'shiq uchun audio faylini yuboring (MP3 formatida):"
	msgPromptPhoto   = "✅ Audio qabul qilindi! Endi qo'shiq uchun rasm yuboring:"
	msgPromptName    = "✅ Rasm qabul qilindi! Endi qo'shiq nomini yozing:"
	msgPromptCat     = "📂 Kategoriyasini yozing (masalan: 'Pop', 'Hip-Hop'):"
	msgPromptText    = "📝 Qo'shiq matnini yozing:"
	msgSongAdded     = "✅ Qo'shiq muvaffaqiyatli qo'shildi!"
	msgGenericFail   = "❌ Xatolik yuz berdi, qayta urinib ko'ring."
	msgCategoryList  = "🎵 Ushbu kategoriyadagi qo‘shiqlar:"
	msgCategoryEmpty = "❌ Bu kategoriyada qo‘shiqlar topilmadi."
	msgSongNotFound  = "❌ Qo'shiq topilmadi."
	msgTextNotFound  = "❌ Qo'shiq matni topilmadi."
	msgListenCaption = "Qo‘shiqni tinglang!"

	btnLyrics = "📝 Matnni olish"
)

// Callback registry keys; payload carries the song name.
const (
	cbSong   = "song"
	cbLyrics = "lyrics"
)
