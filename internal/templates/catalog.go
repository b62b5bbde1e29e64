package templates

import "github.com/larriantoniy/wa_gateway/internal/domain"

// Builtin: встроенный каталог шаблонов сервиса
func Builtin() []domain.Template {
	return []domain.Template{
		{
			ID: domain.TemplateRegistration,
			Body: `Selamat datang di layanan kami! 👋

Terima kasih telah mendaftar. Akun Anda telah berhasil dibuat.

Jika ada pertanyaan, silakan balas pesan ini.

Salam,
Tim Support`,
		},
		{
			ID: domain.TemplateNotification,
			Body: `📢 *NOTIFIKASI SISTEM*

{message}

Waktu: {timestamp}

Mohon perhatikan notifikasi ini.`,
		},
		{
			ID: domain.TemplatePaymentSuccess,
			Body: `✅ *PEMBAYARAN BERHASIL*

Detail Pembayaran:
📅 Tanggal: {date}
💰 Jumlah: Rp {amount}
📝 Deskripsi: {description}

Terima kasih atas pembayaran Anda!`,
		},
		{
			ID: domain.TemplatePaymentFailed,
			Body: `❌ *PEMBAYARAN GAGAL*

Detail Pembayaran:
📅 Tanggal: {date}
💰 Jumlah: Rp {amount}
❌ Alasan: {reason}

Mohon coba lagi atau hubungi tim support kami.`,
		},
		{
			ID: domain.TemplateWithdrawalSuccess,
			Body: `💰 *WITHDRAWAL BERHASIL*

Detail Withdrawal:
📅 Tanggal: {date}
💰 Jumlah: Rp {amount}
🏦 Bank: {bank}
📝 Status: Berhasil

Dana telah dikirim ke rekening Anda.`,
		},
		{
			ID: domain.TemplateWithdrawalFailed,
			Body: `❌ *WITHDRAWAL GAGAL*

Detail Withdrawal:
📅 Tanggal: {date}
💰 Jumlah: Rp {amount}
❌ Alasan: {reason}

Mohon hubungi tim support untuk informasi lebih lanjut.`,
		},
		{
			ID: domain.TemplateCommandHelp,
			Body: `🔍 *PANDUAN PERINTAH*

Berikut format perintah yang tersedia:

1. !status - Cek status langganan
2. !saldo - Cek saldo
3. !withdraw <jumlah> - Tarik dana
4. !help - Tampilkan panduan ini

Contoh: !withdraw 100000`,
		},
	}
}
