package compliance

// BestPractices is the monetization guide printed by the compliance command
const BestPractices = `
🎬 YOUTUBE MONETIZATION BEST PRACTICES
=====================================

✅ DO:
1. Use ONLY stock footage from Pexels/Pixabay
2. Use AI-generated images (Pollinations.ai)
3. Add heavy original commentary and analysis
4. Cite sources verbally ("According to...")
5. Upload manually through YouTube Studio
6. Review entire video before publishing
7. Create custom thumbnails in YT Studio
8. Write unique descriptions (not just templates)
9. Wait 24-48 hours between uploads
10. Engage with comments genuinely

❌ DON'T:
1. Download/reupload anyone's content
2. Use copyrighted music
3. Automate the upload process
4. Upload without reviewing
5. Mass upload videos
6. Use clickbait that doesn't deliver
7. Copy scripts from other creators

🔒 FOR MONETIZATION APPROVAL:
- 1,000+ subscribers
- 4,000+ watch hours (12 months)
- No community strikes
- Original, valuable content
- Consistent upload schedule

📝 MANUAL UPLOAD CHECKLIST:
[ ] Review full video
[ ] Check audio quality
[ ] Verify all visuals are stock/AI
[ ] Create custom thumbnail
[ ] Write unique description
[ ] Add proper tags
[ ] Set to "Unlisted" first, then "Public"
[ ] Monitor first 24 hours for any issues
`
